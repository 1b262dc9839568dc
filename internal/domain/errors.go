package domain

import "errors"

var (
	// ErrCacheMiss is returned when a key is not present in the cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrAPIKeyMissing is returned when no OpenAI API key is configured
	ErrAPIKeyMissing = errors.New("openai api key not configured")

	// ErrRecommendationFailure is returned when the recommendation request fails
	ErrRecommendationFailure = errors.New("recommendation request failed")

	// ErrEmptyCompletion is returned when the model reply contains no usable payload
	ErrEmptyCompletion = errors.New("model returned an empty completion")

	// ErrMalformedRecommendation is returned when the model reply is not the expected JSON
	ErrMalformedRecommendation = errors.New("recommendation JSON could not be parsed")

	// ErrLeadInvalid is returned when a lead submission fails validation
	ErrLeadInvalid = errors.New("invalid lead submission")

	// ErrLeadStoreFailure is returned when appending to the lead log fails
	ErrLeadStoreFailure = errors.New("lead log write failed")

	// ErrPDFRender is returned when the quote PDF cannot be produced
	ErrPDFRender = errors.New("quote pdf rendering failed")
)
