// Package pipeline decides whether an uploaded image is an acceptable cat
// picture. It runs content moderation, an optional safety probe and the cat
// probe, in that order, and stops at the first rejection.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gregwiedeman/cat-validator-hate-guard/internal/awsconfig"
	"github.com/gregwiedeman/cat-validator-hate-guard/internal/classifier"
	"github.com/gregwiedeman/cat-validator-hate-guard/internal/guardrail"
	"github.com/gregwiedeman/cat-validator-hate-guard/internal/moderation"
)

var (
	// ErrConfiguration means the pipeline cannot run as configured, e.g. the
	// content policy could not be resolved.
	ErrConfiguration = errors.New("pipeline misconfigured")
	// ErrClassifier means the cat probe did not produce an answer.
	ErrClassifier = errors.New("classifier failed")
)

const ProbeBlockedReason = "Image contains inappropriate content and was blocked by content filters."

const (
	safetyMaxTokens = 50
	catMaxTokens    = 10
)

type Mode int

const (
	// ModeNoSafetyProbe runs moderation and the cat probe only.
	ModeNoSafetyProbe Mode = iota
	// ModeSafetyProbe asks the safety model about disallowed content before
	// the cat probe.
	ModeSafetyProbe
	// ModeGuardrail has the classifier service enforce a content policy on
	// the cat probe instead of asking a separate question.
	ModeGuardrail
)

func (m Mode) String() string {
	switch m {
	case ModeNoSafetyProbe:
		return "none"
	case ModeSafetyProbe:
		return "probe"
	case ModeGuardrail:
		return "guardrail"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return ModeNoSafetyProbe, nil
	case "probe", "":
		return ModeSafetyProbe, nil
	case "guardrail":
		return ModeGuardrail, nil
	}
	return 0, fmt.Errorf("%w: unknown mode %q", ErrConfiguration, s)
}

type Outcome int

const (
	Accepted Outcome = iota
	RejectedContent
	RejectedNotCat
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case RejectedContent:
		return "rejected"
	case RejectedNotCat:
		return "not_a_cat"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Decision is the pipeline's verdict. Reason is set for RejectedContent.
type Decision struct {
	Outcome Outcome
	Reason  string
}

func (d Decision) Accepted() bool {
	return d.Outcome == Accepted
}

type Image struct {
	Data []byte
	MIME string
}

// BindingResolver yields the content policy binding used in ModeGuardrail.
type BindingResolver interface {
	Resolve(ctx context.Context) (guardrail.Binding, error)
}

type Options struct {
	Mode        Mode
	Moderator   moderation.Moderator
	Classifier  classifier.Classifier
	Provisioner BindingResolver

	SafetyModel string
	CatModel    string

	ModerationTimeout time.Duration
	ClassifierTimeout time.Duration
}

type Pipeline struct {
	opts Options
	log  zerolog.Logger
}

func New(opts Options, logger zerolog.Logger) (*Pipeline, error) {
	if opts.Moderator == nil {
		return nil, fmt.Errorf("%w: moderator is required", ErrConfiguration)
	}
	if opts.Classifier == nil {
		return nil, fmt.Errorf("%w: classifier is required", ErrConfiguration)
	}
	if opts.CatModel == "" {
		return nil, fmt.Errorf("%w: cat model is required", ErrConfiguration)
	}
	switch opts.Mode {
	case ModeNoSafetyProbe:
	case ModeSafetyProbe:
		if opts.SafetyModel == "" {
			return nil, fmt.Errorf("%w: safety model is required in %s mode", ErrConfiguration, opts.Mode)
		}
	case ModeGuardrail:
		if opts.Provisioner == nil {
			return nil, fmt.Errorf("%w: policy provisioner is required in %s mode", ErrConfiguration, opts.Mode)
		}
	default:
		return nil, fmt.Errorf("%w: unknown mode %s", ErrConfiguration, opts.Mode)
	}

	if opts.ModerationTimeout <= 0 {
		opts.ModerationTimeout = 10 * time.Second
	}
	if opts.ClassifierTimeout <= 0 {
		opts.ClassifierTimeout = 30 * time.Second
	}

	return &Pipeline{
		opts: opts,
		log:  logger.With().Str("component", "pipeline").Str("mode", opts.Mode.String()).Logger(),
	}, nil
}

func (p *Pipeline) Mode() Mode {
	return p.opts.Mode
}

// Validate runs the stages for the configured mode. A non-nil error means
// no decision could be reached; rejections are reported through Decision.
func (p *Pipeline) Validate(ctx context.Context, img Image) (Decision, error) {
	log := zerolog.Ctx(ctx)
	if log.GetLevel() == zerolog.Disabled {
		log = &p.log
	}

	if decision, rejected := p.moderate(ctx, img, log); rejected {
		return decision, nil
	}

	var binding *guardrail.Binding
	switch p.opts.Mode {
	case ModeSafetyProbe:
		if decision, rejected := p.safetyProbe(ctx, img, log); rejected {
			return decision, nil
		}
	case ModeGuardrail:
		b, err := p.opts.Provisioner.Resolve(ctx)
		if err != nil {
			return Decision{}, fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
		binding = &b
	}

	return p.catProbe(ctx, img, binding, log)
}

func (p *Pipeline) moderate(ctx context.Context, img Image, log *zerolog.Logger) (Decision, bool) {
	ctx, cancel := context.WithTimeout(ctx, p.opts.ModerationTimeout)
	defer cancel()

	labels, err := p.opts.Moderator.DetectModerationLabels(ctx, img.Data)
	if err != nil {
		log.Warn().Err(err).Str("stage", "moderation").Str("aws_error_code", awsconfig.ErrorCode(err)).
			Msg("moderation unavailable, continuing without it")
		return Decision{}, false
	}

	label, flagged := moderation.Screen(labels)
	if !flagged {
		log.Debug().Str("stage", "moderation").Int("labels", len(labels)).Msg("no disqualifying labels")
		return Decision{}, false
	}

	log.Info().Str("stage", "moderation").Str("label", label.Name).Float64("confidence", label.Confidence).
		Msg("image rejected by moderation")
	return Decision{Outcome: RejectedContent, Reason: moderation.RejectionReason(label)}, true
}

func (p *Pipeline) safetyProbe(ctx context.Context, img Image, log *zerolog.Logger) (Decision, bool) {
	ctx, cancel := context.WithTimeout(ctx, p.opts.ClassifierTimeout)
	defer cancel()

	answer, err := p.opts.Classifier.Ask(ctx, classifier.Prompt{
		Image:     img.Data,
		MIME:      img.MIME,
		Question:  classifier.SafetyQuestion,
		ModelID:   p.opts.SafetyModel,
		MaxTokens: safetyMaxTokens,
	})
	if err != nil {
		log.Warn().Err(err).Str("stage", "safety_probe").Str("aws_error_code", awsconfig.ErrorCode(err)).
			Msg("safety probe failed, continuing")
		return Decision{}, false
	}

	if answer.Blocked {
		log.Info().Str("stage", "safety_probe").Msg("safety probe blocked by content filters")
		return Decision{Outcome: RejectedContent, Reason: answer.BlockReason}, true
	}
	if strings.ToUpper(strings.TrimSpace(answer.Text)) == "YES" {
		log.Info().Str("stage", "safety_probe").Msg("image flagged by safety probe")
		return Decision{Outcome: RejectedContent, Reason: ProbeBlockedReason}, true
	}
	return Decision{}, false
}

func (p *Pipeline) catProbe(ctx context.Context, img Image, binding *guardrail.Binding, log *zerolog.Logger) (Decision, error) {
	ctx, cancel := context.WithTimeout(ctx, p.opts.ClassifierTimeout)
	defer cancel()

	var temperature, topP float32 = 0, 1
	answer, err := p.opts.Classifier.Ask(ctx, classifier.Prompt{
		Image:       img.Data,
		MIME:        img.MIME,
		Question:    classifier.CatQuestion,
		ModelID:     p.opts.CatModel,
		MaxTokens:   catMaxTokens,
		Temperature: &temperature,
		TopP:        &topP,
		Guardrail:   binding,
	})
	if err != nil {
		log.Error().Err(err).Str("stage", "cat_probe").Str("aws_error_code", awsconfig.ErrorCode(err)).
			Msg("cat probe failed")
		return Decision{}, fmt.Errorf("%w: %w", ErrClassifier, err)
	}

	if answer.Blocked {
		reason := answer.BlockReason
		if reason == "" {
			reason = classifier.DefaultBlockReason
		}
		log.Info().Str("stage", "cat_probe").Msg("cat probe blocked by content filters")
		return Decision{Outcome: RejectedContent, Reason: reason}, nil
	}

	if strings.ToLower(strings.TrimSpace(answer.Text)) == "yes" {
		return Decision{Outcome: Accepted}, nil
	}
	log.Info().Str("stage", "cat_probe").Str("answer", answer.Text).Msg("no cat found")
	return Decision{Outcome: RejectedNotCat}, nil
}
