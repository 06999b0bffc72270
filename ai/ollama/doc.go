// Package ollama implements ai.Generator over Ollama's native HTTP API.
//
// A call is one POST to {host}/api/generate with the body
// {model, prompt, stream: false, options: {temperature, top_p, max_tokens}}
// and reads the generated text from the "response" field of the reply.
package ollama
