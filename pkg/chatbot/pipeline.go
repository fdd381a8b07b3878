package chatbot

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gilbertordx/rhcp-chatbot/pkg/classifier"
	"github.com/gilbertordx/rhcp-chatbot/pkg/knowledge"
	"github.com/gilbertordx/rhcp-chatbot/pkg/session"
)

// Result is the outcome of one inference turn. RawIntent and
// RawConfidence carry the pre-gate classifier output so callers can
// observe what the gate rejected.
type Result struct {
	Intent        string   `json:"intent"`
	Confidence    float64  `json:"confidence"`
	Entities      []Entity `json:"entities"`
	FinalMessage  string   `json:"final_message"`
	RawIntent     string   `json:"raw_intent"`
	RawConfidence float64  `json:"raw_confidence"`
}

// Pipeline is the full inference service. Construct with NewPipeline;
// all collaborators are injected and the pipeline owns none of their
// lifecycles except its own sessions reference.
type Pipeline struct {
	classifier classifier.Classifier
	extractor  *Extractor
	resolver   *knowledge.Resolver
	responder  *Responder
	sessions   *session.Store
	threshold  float64
	log        *zap.Logger
}

// NewPipeline wires the inference pipeline. A missing collaborator is
// a configuration defect and fails construction rather than surfacing
// per request.
func NewPipeline(cls classifier.Classifier, extractor *Extractor, resolver *knowledge.Resolver, responder *Responder, sessions *session.Store, threshold float64, log *zap.Logger) (*Pipeline, error) {
	switch {
	case cls == nil:
		return nil, errors.New("pipeline: classifier is not initialized")
	case extractor == nil:
		return nil, errors.New("pipeline: extractor is not initialized")
	case resolver == nil:
		return nil, errors.New("pipeline: resolver is not initialized")
	case responder == nil:
		return nil, errors.New("pipeline: responder is not initialized")
	case sessions == nil:
		return nil, errors.New("pipeline: session store is not initialized")
	}
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		classifier: cls,
		extractor:  extractor,
		resolver:   resolver,
		responder:  responder,
		sessions:   sessions,
		threshold:  threshold,
		log:        log,
	}, nil
}

// RunInference executes one turn: classify, gate, extract,
// canonicalize, respond, and record the turn in session memory when a
// session id is given.
func (p *Pipeline) RunInference(ctx context.Context, message, sessionID string) (*Result, error) {
	lower := strings.ToLower(strings.TrimSpace(message))
	if lower == "" {
		return &Result{
			Intent:       IntentUnknown,
			FinalMessage: UnknownRedirect,
			RawIntent:    IntentUnknown,
		}, nil
	}

	preds := p.classifier.Classify(lower)
	intent, confidence := GateIntent(preds, p.threshold)
	rawIntent, rawConfidence := IntentUnknown, 0.0
	if len(preds) > 0 {
		rawIntent, rawConfidence = preds[0].Label, preds[0].Probability
	}

	entities := p.canonicalize(p.extractor.Extract(lower))

	final := p.responder.Build(ctx, message, intent, entities, sessionID)

	if sessionID != "" {
		p.sessions.AddMessage(sessionID, message, session.Turn{
			Timestamp:   time.Now(),
			UserMessage: message,
			BotMessage:  final,
			Intent:      intent,
			Confidence:  confidence,
			Entities:    sessionEntities(entities),
		})
	}

	p.log.Debug("inference turn",
		zap.String("intent", intent),
		zap.Float64("confidence", confidence),
		zap.Int("entities", len(entities)),
	)

	return &Result{
		Intent:        intent,
		Confidence:    confidence,
		Entities:      entities,
		FinalMessage:  final,
		RawIntent:     rawIntent,
		RawConfidence: rawConfidence,
	}, nil
}

// canonicalize resolves raw extractor hits against the knowledge
// base. An unknown entity kind is dropped with a warning; a resolution
// miss keeps the raw span as the value.
func (p *Pipeline) canonicalize(raw []RawEntity) []Entity {
	var out []Entity
	for _, re := range raw {
		e := Entity{
			Type:       re.Type,
			Span:       re.Span,
			Value:      re.Span,
			Confidence: re.Confidence,
		}
		switch re.Type {
		case knowledge.KindMember:
			if m := p.resolver.ResolveMember(re.Span); m != nil {
				e.Member, e.Value = m, m.Name
			}
		case knowledge.KindAlbum:
			if a := p.resolver.ResolveAlbum(re.Span); a != nil {
				e.Album, e.Value = a, a.Title
			}
		case knowledge.KindSong:
			if s := p.resolver.ResolveSong(re.Span); s != nil {
				e.Song, e.Value = s, s.Title
			}
		case knowledge.KindBand:
			// Band mentions pass through unresolved.
		default:
			p.log.Warn("dropping entity of unknown kind", zap.String("kind", string(re.Type)), zap.String("span", re.Span))
			continue
		}
		out = append(out, e)
	}
	return out
}

// sessionEntities projects pipeline entities onto the narrow view the
// context reducer consumes.
func sessionEntities(entities []Entity) []session.Entity {
	out := make([]session.Entity, 0, len(entities))
	for _, e := range entities {
		se := session.Entity{
			Type: string(e.Type),
			Name: e.Value,
		}
		if e.Member != nil {
			se.Name = e.Member.Canonical
			if e.Member.Active {
				se.MemberType = "current"
			} else {
				se.MemberType = "former"
			}
		}
		if e.Album != nil {
			se.Name = e.Album.Canonical
			se.AlbumType = e.Album.Type
		}
		if e.Song != nil {
			se.Name = e.Song.Canonical
			se.Album = e.Song.Album
		}
		out = append(out, se)
	}
	return out
}

// Close releases pipeline-held resources. Collaborators with their own
// lifecycles (facts store, session sweeper) are closed by their
// owners.
func (p *Pipeline) Close() error {
	return nil
}
