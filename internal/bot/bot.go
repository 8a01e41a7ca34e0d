// Package bot orchestrates question answering: classify the question, pull a
// bounded context from the store, render a prompt, and call the model. Every
// failure mode comes back as an Answer, never as a panic.
package bot

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/cageside/picks-cli/internal/aggregate"
	"github.com/cageside/picks-cli/internal/classify"
	"github.com/cageside/picks-cli/internal/cost"
	"github.com/cageside/picks-cli/internal/model"
	"github.com/cageside/picks-cli/internal/prompt"
	"github.com/cageside/picks-cli/pkg/anthropic"
)

const (
	maxTokensFightAnalysis  = 800
	maxTokensInsideDistance = 800
	maxTokensConsensus      = 1000
	maxTokensUnderdogs      = 1000
	maxTokensGeneral        = 400
)

// Bot answers natural-language questions about analyst picks.
type Bot struct {
	classifier  *classify.Classifier
	optimizer   *aggregate.Optimizer
	client      anthropic.Client
	calculator  *cost.Calculator
	limiter     *rate.Limiter
	modelID     string
	callTimeout time.Duration
}

// Config holds Bot construction parameters.
type Config struct {
	Classifier  *classify.Classifier
	Optimizer   *aggregate.Optimizer
	Client      anthropic.Client
	Calculator  *cost.Calculator
	Model       string
	CallTimeout time.Duration
	RPS         float64
}

// New builds a Bot. RPS bounds outgoing model calls; zero means 1 req/s.
func New(cfg Config) *Bot {
	rps := cfg.RPS
	if rps <= 0 {
		rps = 1
	}
	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Bot{
		classifier:  cfg.Classifier,
		optimizer:   cfg.Optimizer,
		client:      cfg.Client,
		calculator:  cfg.Calculator,
		limiter:     rate.NewLimiter(rate.Limit(rps), 1),
		modelID:     cfg.Model,
		callTimeout: timeout,
	}
}

// Answer routes a question through the intent handlers. It always returns a
// non-nil Answer; internal failures become a ResultError answer with the
// error logged, so callers never have to branch on an error path.
func (b *Bot) Answer(ctx context.Context, question string) *model.Answer {
	intent, params := b.classifier.Classify(ctx, question)

	var (
		ans *model.Answer
		err error
	)
	switch intent {
	case model.IntentFightSpecific:
		ans, err = b.handleFightSpecific(ctx, question, params)
	case model.IntentInsideDistance:
		ans, err = b.handleInsideDistance(ctx, question, params)
	case model.IntentConsensusPicks:
		ans, err = b.handleConsensusPicks(ctx, question, params)
	case model.IntentUnderdogs:
		ans, err = b.handleUnderdogs(ctx, question, params)
	default:
		ans, err = b.handleGeneral(ctx, question)
	}
	if err != nil {
		zap.L().Error("answer failed",
			zap.String("intent", string(intent)),
			zap.Error(err),
		)
		return &model.Answer{
			Answer:   "Sorry, something went wrong while answering that. Please try again.",
			Metadata: model.Metadata{QueryType: model.ResultError},
		}
	}
	return ans
}

func (b *Bot) handleFightSpecific(ctx context.Context, question string, params model.QueryParams) (*model.Answer, error) {
	fight, err := b.optimizer.FightByFighters(ctx, params.FighterA, params.FighterB, params.EventName)
	if err != nil {
		return nil, err
	}
	if fight == nil {
		return &model.Answer{
			Answer: fmt.Sprintf(
				"I couldn't find a fight between %s and %s. Please check the fighter names or try specifying the event.",
				params.FighterA, params.FighterB,
			),
			Metadata: model.Metadata{QueryType: model.ResultFightNotFound},
		}, nil
	}

	analysis, err := b.optimizer.AggregateFightContext(ctx, fight.FightID, fight)
	if err != nil {
		return nil, err
	}
	if analysis == nil || analysis.Summary.TotalPredictions == 0 {
		return &model.Answer{
			Answer: fmt.Sprintf(
				"Found the fight, but there are no analyst predictions yet for %s vs %s. Try ingesting some pick articles first.",
				fight.FighterA, fight.FighterB,
			),
			Metadata: model.Metadata{QueryType: model.ResultNoPredictions, Fight: fight},
		}, nil
	}

	text, est, err := b.callModel(ctx, prompt.FightAnalysis(analysis, question), maxTokensFightAnalysis)
	if err != nil {
		return nil, err
	}
	return &model.Answer{
		Answer: text,
		Metadata: model.Metadata{
			QueryType: model.ResultFightAnalysis,
			Fight:     fight,
			Cost:      est,
		},
	}, nil
}

func (b *Bot) handleInsideDistance(ctx context.Context, question string, params model.QueryParams) (*model.Answer, error) {
	if params.EventName == "" {
		return missingEvent("inside-distance predictions"), nil
	}
	idCtx, err := b.optimizer.InsideDistance(ctx, params.EventName)
	if err != nil {
		return nil, err
	}
	if idCtx == nil {
		return eventNotFound(params.EventName), nil
	}

	text, est, err := b.callModel(ctx, prompt.InsideDistance(idCtx, question), maxTokensInsideDistance)
	if err != nil {
		return nil, err
	}
	return &model.Answer{
		Answer:   text,
		Metadata: model.Metadata{QueryType: model.ResultInsideDistance, Cost: est},
	}, nil
}

func (b *Bot) handleConsensusPicks(ctx context.Context, question string, params model.QueryParams) (*model.Answer, error) {
	if params.EventName == "" {
		return missingEvent("consensus picks"), nil
	}
	consensus, err := b.optimizer.EventConsensus(ctx, params.EventName)
	if err != nil {
		return nil, err
	}
	if consensus == nil {
		return eventNotFound(params.EventName), nil
	}
	if len(consensus.Picks) == 0 {
		return &model.Answer{
			Answer: fmt.Sprintf(
				"Found '%s', but not enough predictions to determine consensus yet.",
				params.EventName,
			),
			Metadata: model.Metadata{QueryType: model.ResultNoConsensus},
		}, nil
	}

	text, est, err := b.callModel(ctx, prompt.ConsensusPicks(consensus, question), maxTokensConsensus)
	if err != nil {
		return nil, err
	}
	return &model.Answer{
		Answer:   text,
		Metadata: model.Metadata{QueryType: model.ResultConsensusPicks, Cost: est},
	}, nil
}

func (b *Bot) handleUnderdogs(ctx context.Context, question string, params model.QueryParams) (*model.Answer, error) {
	if params.EventName == "" {
		return missingEvent("underdog picks"), nil
	}
	dogs, err := b.optimizer.EventUnderdogs(ctx, params.EventName)
	if err != nil {
		return nil, err
	}
	if dogs == nil {
		return eventNotFound(params.EventName), nil
	}
	if len(dogs.Picks) == 0 {
		return &model.Answer{
			Answer: fmt.Sprintf(
				"Found '%s', but no clear underdogs - consensus is strong across all fights.",
				params.EventName,
			),
			Metadata: model.Metadata{QueryType: model.ResultNoUnderdogs},
		}, nil
	}

	text, est, err := b.callModel(ctx, prompt.Underdogs(dogs, question), maxTokensUnderdogs)
	if err != nil {
		return nil, err
	}
	return &model.Answer{
		Answer:   text,
		Metadata: model.Metadata{QueryType: model.ResultUnderdogs, Cost: est},
	}, nil
}

func (b *Bot) handleGeneral(ctx context.Context, question string) (*model.Answer, error) {
	text, est, err := b.callModel(ctx, prompt.General(question), maxTokensGeneral)
	if err != nil {
		return nil, err
	}
	return &model.Answer{
		Answer:   text,
		Metadata: model.Metadata{QueryType: model.ResultGeneral, Cost: est},
	}, nil
}

// callModel sends a single-message prompt through the rate limiter and prices
// the response.
func (b *Bot) callModel(ctx context.Context, promptText string, maxTokens int64) (string, *model.CostEstimate, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return "", nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, b.callTimeout)
	defer cancel()

	resp, err := b.client.CreateMessage(callCtx, anthropic.MessageRequest{
		Model:     b.modelID,
		MaxTokens: maxTokens,
		Messages: []anthropic.Message{
			{Role: "user", Content: promptText},
		},
	})
	if err != nil {
		return "", nil, err
	}

	est := b.calculator.Estimate(resp.Usage.InputTokens, resp.Usage.OutputTokens)
	resp.Usage.LogCost(b.modelID, est.CostUSD)
	return resp.Text(), &est, nil
}

func missingEvent(what string) *model.Answer {
	return &model.Answer{
		Answer:   fmt.Sprintf("Please specify an event (e.g., 'UFC 309') to get %s.", what),
		Metadata: model.Metadata{QueryType: model.ResultMissingEvent},
	}
}

func eventNotFound(eventName string) *model.Answer {
	return &model.Answer{
		Answer:   fmt.Sprintf("I don't have predictions for '%s' yet.", eventName),
		Metadata: model.Metadata{QueryType: model.ResultEventNotFound},
	}
}
