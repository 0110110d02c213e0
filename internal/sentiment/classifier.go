package sentiment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	classificationPromptTemplateConstant = "You are a machine specialized in segregating whether a review is positive, negative, or neutral. You have to answer in one word whether the review is positive, negative, or neutral. Here is the review: %s"
	generatorMissingMessageConstant      = "content generator not configured"
	reviewTextRequiredMessageConstant    = "review text must be provided"
	retriesExhaustedTemplateConstant     = "quota exhausted after %d attempts: %w"
	quotaRetryMessageConstant            = "quota exceeded, retrying"
	logFieldAttemptConstant              = "attempt"
	logFieldBackoffSecondsConstant       = "backoff_seconds"
	positiveResponseWordConstant         = "positive"
	negativeResponseWordConstant         = "negative"
	defaultMaximumAttemptsConstant       = 5
	defaultBackoffBaseSecondsConstant    = 9
)

// Label enumerates the sentiment labels written into the workbook.
type Label string

// Supported sentiment labels.
const (
	LabelPositive Label = Label("Positive")
	LabelNegative Label = Label("Negative")
	LabelNeutral  Label = Label("Neutral")
	LabelError    Label = Label("Error")
)

// ErrGeneratorNotConfigured indicates the content generator dependency was missing.
var ErrGeneratorNotConfigured = errors.New(generatorMissingMessageConstant)

// ErrReviewTextRequired indicates the review text option was empty.
var ErrReviewTextRequired = errors.New(reviewTextRequiredMessageConstant)

// Dependencies enumerates the collaborators required by the classifier.
type Dependencies struct {
	Generator ContentGenerator
	Logger    *zap.Logger
}

// Options tunes retry behavior; zero values select the defaults.
type Options struct {
	MaximumAttempts    int
	BackoffBaseSeconds int
}

// Classifier labels review text through a content generator, retrying quota exhaustion.
type Classifier struct {
	generator          ContentGenerator
	logger             *zap.Logger
	maximumAttempts    int
	backoffBaseSeconds int
	sleep              func(sleepContext context.Context, duration time.Duration) error
}

// NewClassifier constructs a Classifier from the provided dependencies and options.
func NewClassifier(dependencies Dependencies, options Options) (*Classifier, error) {
	if dependencies.Generator == nil {
		return nil, ErrGeneratorNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	maximumAttempts := options.MaximumAttempts
	if maximumAttempts <= 0 {
		maximumAttempts = defaultMaximumAttemptsConstant
	}

	backoffBaseSeconds := options.BackoffBaseSeconds
	if backoffBaseSeconds <= 0 {
		backoffBaseSeconds = defaultBackoffBaseSecondsConstant
	}

	return &Classifier{
		generator:          dependencies.Generator,
		logger:             logger,
		maximumAttempts:    maximumAttempts,
		backoffBaseSeconds: backoffBaseSeconds,
		sleep:              sleepWithContext,
	}, nil
}

// Classify labels a single review, retrying quota exhaustion with exponential backoff.
func (classifier *Classifier) Classify(executionContext context.Context, reviewText string) (Label, error) {
	trimmedReviewText := strings.TrimSpace(reviewText)
	if len(trimmedReviewText) == 0 {
		return LabelError, ErrReviewTextRequired
	}

	prompt := fmt.Sprintf(classificationPromptTemplateConstant, trimmedReviewText)

	var lastFailure error
	for attemptIndex := 0; attemptIndex < classifier.maximumAttempts; attemptIndex++ {
		generatedText, generationError := classifier.generator.GenerateText(executionContext, prompt)
		if generationError == nil {
			return normalizeLabel(generatedText), nil
		}
		if !IsQuotaExhausted(generationError) {
			return LabelError, generationError
		}

		lastFailure = generationError
		if attemptIndex == classifier.maximumAttempts-1 {
			break
		}

		backoffSeconds := math.Pow(float64(classifier.backoffBaseSeconds), float64(attemptIndex))
		classifier.logger.Warn(
			quotaRetryMessageConstant,
			zap.Int(logFieldAttemptConstant, attemptIndex+1),
			zap.Float64(logFieldBackoffSecondsConstant, backoffSeconds),
		)
		if sleepError := classifier.sleep(executionContext, time.Duration(backoffSeconds*float64(time.Second))); sleepError != nil {
			return LabelError, sleepError
		}
	}

	return LabelError, fmt.Errorf(retriesExhaustedTemplateConstant, classifier.maximumAttempts, lastFailure)
}

func normalizeLabel(generatedText string) Label {
	normalizedText := strings.ToLower(strings.TrimSpace(generatedText))
	switch normalizedText {
	case positiveResponseWordConstant:
		return LabelPositive
	case negativeResponseWordConstant:
		return LabelNegative
	default:
		return LabelNeutral
	}
}

func sleepWithContext(sleepContext context.Context, duration time.Duration) error {
	backoffTimer := time.NewTimer(duration)
	defer backoffTimer.Stop()

	select {
	case <-sleepContext.Done():
		return sleepContext.Err()
	case <-backoffTimer.C:
		return nil
	}
}
