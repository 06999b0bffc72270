// Package config loads the medirag YAML configuration file.
//
// Values in the file are merged over Default, so a file only needs the
// keys it changes. A missing file yields the defaults.
//
//	chunking:
//	  max_chunk_chars: 800
//	retrieval:
//	  weight_vector: 0.6
//	  weight_lexical: 0.4
//	ai:
//	  generation_backend: openai
//	  generation_host: http://localhost:8000
//	  timeout: 30s
package config
