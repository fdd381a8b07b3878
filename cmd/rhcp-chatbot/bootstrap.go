package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/gilbertordx/rhcp-chatbot/pkg/chatbot"
	"github.com/gilbertordx/rhcp-chatbot/pkg/classifier"
	"github.com/gilbertordx/rhcp-chatbot/pkg/config"
	"github.com/gilbertordx/rhcp-chatbot/pkg/knowledge"
	"github.com/gilbertordx/rhcp-chatbot/pkg/knowledge/facts"
	"github.com/gilbertordx/rhcp-chatbot/pkg/logging"
	"github.com/gilbertordx/rhcp-chatbot/pkg/session"
)

// app bundles the wired service graph shared by the serve and chat
// commands.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	base     *knowledge.Base
	corpora  chatbot.Corpora
	facts    *facts.Store // nil when the database is unavailable
	sessions *session.Store
	pipeline *chatbot.Pipeline
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	base := knowledge.LoadBase(cfg.KnowledgeDir, log)
	for _, gap := range base.Validate() {
		log.Warn("knowledge base gap", zap.String("gap", gap))
	}

	corpora, err := chatbot.LoadCorpora(cfg.TrainingDir)
	if err != nil {
		return nil, fmt.Errorf("load training corpora: %w", err)
	}

	cls, err := buildClassifier(cfg, corpora, log)
	if err != nil {
		return nil, err
	}

	var factsStore *facts.Store
	if cfg.FactsDBPath != "" {
		fs, err := facts.Open(cfg.FactsDBPath)
		if err != nil {
			log.Warn("facts store unavailable, factual answers fall back to the knowledge base", zap.Error(err))
		} else if err := fs.Validate(context.Background()); err != nil {
			log.Warn("facts store empty, run 'rhcp-chatbot facts build'", zap.Error(err))
			fs.Close()
		} else {
			factsStore = fs
		}
	}

	sessions := session.NewStore(cfg.MaxSessions, cfg.SessionTimeout, log)
	resolver, err := knowledge.NewResolver(base, log)
	if err != nil {
		return nil, fmt.Errorf("init resolver: %w", err)
	}
	responder := chatbot.NewResponder(base, factsStore, sessions, corpora, log)

	pipeline, err := chatbot.NewPipeline(cls, chatbot.NewExtractor(base), resolver, responder, sessions, cfg.ConfidenceThreshold, log)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		log:      log,
		base:     base,
		corpora:  corpora,
		facts:    factsStore,
		sessions: sessions,
		pipeline: pipeline,
	}, nil
}

// buildClassifier prefers the exported model artifact and falls back
// to centroid classification over the training corpora.
func buildClassifier(cfg *config.Config, corpora chatbot.Corpora, log *zap.Logger) (classifier.Classifier, error) {
	if cfg.ModelPath != "" {
		if _, err := os.Stat(cfg.ModelPath); err == nil {
			m, err := classifier.LoadModel(cfg.ModelPath)
			if err != nil {
				return nil, fmt.Errorf("load model %s: %w", cfg.ModelPath, err)
			}
			log.Info("using model artifact", zap.String("path", cfg.ModelPath))
			return m, nil
		}
	}

	examples := corpora.TrainingExamples()
	if len(examples) == 0 {
		return nil, fmt.Errorf("no model artifact and no training corpora")
	}
	log.Info("using corpus classifier", zap.Int("intents", len(examples)))
	return classifier.NewCorpusClassifier(examples), nil
}

func (a *app) Close() {
	if a.pipeline != nil {
		a.pipeline.Close()
	}
	if a.facts != nil {
		a.facts.Close()
	}
	_ = a.log.Sync()
}
