// Package costs maps (family, model, token counts) onto monetary cost.
// Rates are static configuration; nothing is fetched or learned at runtime.
// Unknown models fall back to a conservative default rate instead of
// failing the request.
package costs
