// Package sentiment classifies review text as positive, negative, or neutral
// through the Gemini generative-language API, retrying quota exhaustion with
// exponential backoff.
package sentiment
