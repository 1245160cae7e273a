package gatewaytest

// Canned response bodies matching each family's wire format.

// ChatResponseBody returns a chat-completions response reporting the given
// content and token counts.
func ChatResponseBody(content string, promptTokens, completionTokens int) map[string]interface{} {
	return map[string]interface{}{
		"id":    "chatcmpl-test",
		"model": "test-model",
		"choices": []map[string]interface{}{
			{
				"index":         0,
				"message":       map[string]interface{}{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]interface{}{
			"prompt_tokens":     promptTokens,
			"completion_tokens": completionTokens,
			"total_tokens":      promptTokens + completionTokens,
		},
	}
}

// MessagesResponseBody returns a messages-API response.
func MessagesResponseBody(content string, inputTokens, outputTokens int) map[string]interface{} {
	return map[string]interface{}{
		"id":    "msg-test",
		"model": "test-model",
		"content": []map[string]interface{}{
			{"type": "text", "text": content},
		},
		"usage": map[string]interface{}{
			"input_tokens":  inputTokens,
			"output_tokens": outputTokens,
		},
	}
}

// GenerateResponseBody returns a local generate response.
func GenerateResponseBody(content string, promptTokens, evalTokens int) map[string]interface{} {
	return map[string]interface{}{
		"model":             "test-model",
		"response":          content,
		"done":              true,
		"prompt_eval_count": promptTokens,
		"eval_count":        evalTokens,
	}
}

// ModelsResponseBody returns a list-models response naming the given ids.
func ModelsResponseBody(ids ...string) map[string]interface{} {
	data := make([]map[string]interface{}, len(ids))
	for i, id := range ids {
		data[i] = map[string]interface{}{"id": id}
	}
	return map[string]interface{}{"data": data}
}
