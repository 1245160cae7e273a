// Relay is a multi-provider inference gateway: one contract over several
// independent LLM backends, each with its own authentication scheme, wire
// format, and pricing model.
//
// Usage:
//
//	# Register a local backend and probe it
//	relay providers add --name local-llm --family local --url http://localhost:11434
//	relay providers test <id>
//
//	# Make a provider the active one and send a prompt
//	relay providers use <id>
//	relay send --prompt "Hello"
//
//	# Inspect and clear request history
//	relay history
//	relay history --clear
//
//	# Move configuration between machines
//	relay export > providers.json
//	relay import providers.json
package main

func main() {
	Execute()
}
