package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/newscraft/capi-ingest/internal/domain"
)

var tracer = otel.Tracer("ingest")

const invalidKeyMessage = "Invalid auth key in the request."

// Result is the outcome of one processed notification and maps 1:1 onto the
// acknowledgment body.
type Result struct {
	EventID      string
	HasErrors    bool
	Message      string
	Outcome      domain.OutcomeKind
	ArticleCount int
	Stage        string
}

// IngestUsecase runs the webhook decision tree: authenticate, gate on
// liveness and status, then fetch/tombstone/reject, and always leave exactly
// one audit row behind.
type IngestUsecase struct {
	collections CollectionRepository
	audit       AuditRepository
	keys        KeyVerifier
	content     ContentGateway
	events      EventPublisher
	keyName     string
	legacyCrops bool
	now         func() time.Time
}

func NewIngestUsecase(
	collections CollectionRepository,
	audit AuditRepository,
	keys KeyVerifier,
	content ContentGateway,
	events EventPublisher,
	keyName string,
	legacyCrops bool,
) *IngestUsecase {
	return &IngestUsecase{
		collections: collections,
		audit:       audit,
		keys:        keys,
		content:     content,
		events:      events,
		keyName:     keyName,
		legacyCrops: legacyCrops,
		now:         time.Now,
	}
}

// pipelineState is the per-request scratch threaded through the decision
// steps. Branches that skip a step see zero values, never leftovers from a
// previous request.
type pipelineState struct {
	eventID      string
	stage        string
	message      string
	outcome      domain.OutcomeKind
	rawDocument  string
	headline     string
	articleCount int
}

// Process runs the full pipeline for one notification. It never returns an
// error: failures are converted into the 500 placeholder path and surfaced
// through the result, and the audit row is written regardless.
func (uc *IngestUsecase) Process(ctx context.Context, rawPayload []byte, notif domain.CollectionNotification, presentedKey string) Result {
	ctx, span := tracer.Start(ctx, "Ingest.Usecase.Process")
	defer span.End()

	span.SetAttributes(
		attribute.String("collectionId", notif.CAPIID),
		attribute.String("status", notif.Status),
	)

	st := &pipelineState{
		eventID: uuid.NewString(),
		stage:   domain.StageReceived,
	}

	err := uc.run(ctx, st, notif, presentedKey)
	if err != nil {
		span.RecordError(err)
		uc.fail(ctx, st, notif, err)
	}

	uc.writeAudit(ctx, st, notif.CAPIID, rawPayload)
	uc.publish(ctx, st, notif.CAPIID)

	return Result{
		EventID:      st.eventID,
		HasErrors:    st.outcome.HasErrors(),
		Message:      st.message,
		Outcome:      st.outcome,
		ArticleCount: st.articleCount,
		Stage:        st.stage,
	}
}

func (uc *IngestUsecase) run(ctx context.Context, st *pipelineState, notif domain.CollectionNotification, presentedKey string) error {

	st.stage = domain.StageAuth
	ok, err := uc.keys.Verify(ctx, uc.keyName, presentedKey)
	if err != nil {
		return errors.Wrap(err, "auth key lookup failed")
	}
	if !ok {
		st.outcome = domain.OutcomeAuthFailed
		st.message = invalidKeyMessage
		return nil
	}

	st.stage = domain.StageLiveness
	now := uc.now()
	if notif.Date.Live.After(now) {
		return uc.notLive(ctx, st, notif, now)
	}

	switch {
	case notif.Status == domain.StatusActive && !notif.Draft:
		return uc.ingest(ctx, st, notif)
	case domain.GoneStatus(notif.Status) || notif.Draft:
		return uc.tombstone(ctx, st, notif)
	default:
		return uc.reject(ctx, st, notif)
	}
}

// notLive writes the 404 placeholder without touching the content API. The
// message carries both clocks for diagnostics.
func (uc *IngestUsecase) notLive(ctx context.Context, st *pipelineState, notif domain.CollectionNotification, now time.Time) error {
	st.outcome = domain.OutcomeNotLive
	st.message = fmt.Sprintf(
		"Collection %s is not yet live. Server time: %s, live time: %s",
		notif.CAPIID, now.UTC().Format(time.RFC3339), notif.Date.Live.UTC().Format(time.RFC3339),
	)

	st.stage = domain.StagePersist
	record := &domain.CollectionRecord{
		CollectionID:   notif.CAPIID,
		Source:         domain.SourceCAPIV3,
		EventID:        st.eventID,
		SimplifiedJSON: placeholderJSON(domain.CodeNotLive, st.message),
		ArticleCount:   0,
	}
	if err := uc.collections.Upsert(ctx, record); err != nil {
		return errors.Wrap(err, "not-live upsert failed")
	}

	st.stage = domain.StageDone
	return nil
}

// ingest is the fetch path: pull the full document, flatten it and refresh the
// persisted record atomically.
func (uc *IngestUsecase) ingest(ctx context.Context, st *pipelineState, notif domain.CollectionNotification) error {

	st.stage = domain.StageFetch
	doc, raw, err := uc.content.FetchCollection(ctx, notif.CAPIID)
	if err != nil {
		return errors.Wrap(err, "collection fetch failed")
	}
	st.rawDocument = string(raw)

	st.stage = domain.StageSimplify
	st.headline = doc.Content.Headline
	articles := domain.Simplify(doc, domain.SimplifyOptions{LegacyCrops: uc.legacyCrops})
	simplified, err := json.Marshal(domain.SimplifiedList{Data: articles})
	if err != nil {
		return errors.Wrap(err, "simplified list encoding failed")
	}
	st.articleCount = len(articles)

	st.stage = domain.StagePersist
	record := &domain.CollectionRecord{
		CollectionID:   notif.CAPIID,
		RawJSON:        st.rawDocument,
		Source:         domain.SourceCAPIV3,
		EventID:        st.eventID,
		SimplifiedJSON: string(simplified),
		Headline:       st.headline,
		ArticleCount:   st.articleCount,
	}
	if err := uc.collections.Upsert(ctx, record); err != nil {
		return errors.Wrap(err, "collection upsert failed")
	}

	st.stage = domain.StageDone
	st.outcome = domain.OutcomeIngested
	st.message = fmt.Sprintf("Collection %s ingested with %d articles.", notif.CAPIID, st.articleCount)
	return nil
}

// tombstone overwrites an existing record with the 410 placeholder. The raw
// document and headline columns are left untouched; a missing record is not
// an error.
func (uc *IngestUsecase) tombstone(ctx context.Context, st *pipelineState, notif domain.CollectionNotification) error {

	st.stage = domain.StagePersist
	updated, err := uc.collections.WritePlaceholder(
		ctx, notif.CAPIID, st.eventID, placeholderJSON(domain.CodeGone, "Gone"),
	)
	if err != nil {
		return errors.Wrap(err, "tombstone update failed")
	}

	st.stage = domain.StageDone
	st.outcome = domain.OutcomeGone
	if updated {
		st.message = fmt.Sprintf("Collection %s marked as gone.", notif.CAPIID)
	} else {
		st.message = fmt.Sprintf("Collection %s already deleted or does not exist.", notif.CAPIID)
	}
	return nil
}

// reject handles status/draft combinations the pipeline does not recognize.
// Update-only: when no record exists the write is a no-op.
func (uc *IngestUsecase) reject(ctx context.Context, st *pipelineState, notif domain.CollectionNotification) error {

	st.stage = domain.StagePersist
	_, err := uc.collections.WritePlaceholder(
		ctx, notif.CAPIID, st.eventID, placeholderJSON(domain.CodeNotAcceptable, "Not Acceptable"),
	)
	if err != nil {
		return errors.Wrap(err, "rejection update failed")
	}

	st.stage = domain.StageDone
	st.outcome = domain.OutcomeRejected
	st.message = fmt.Sprintf(
		"Collection %s rejected: status %q draft=%t is not acceptable.",
		notif.CAPIID, notif.Status, notif.Draft,
	)
	return nil
}

// fail is the single failure boundary: whatever step broke, upsert the 500
// placeholder with the partial state computed so far and surface the error and
// the last upstream response in the message.
func (uc *IngestUsecase) fail(ctx context.Context, st *pipelineState, notif domain.CollectionNotification, cause error) {
	st.outcome = domain.OutcomeFailed
	st.articleCount = 0
	st.message = fmt.Sprintf("ingest failed: %s | upstream: %s", cause.Error(), upstreamSnippet(cause))

	record := &domain.CollectionRecord{
		CollectionID:   notif.CAPIID,
		RawJSON:        st.rawDocument,
		Source:         domain.SourceCAPIV3,
		EventID:        st.eventID,
		SimplifiedJSON: placeholderJSON(domain.CodeFailure, cause.Error()),
		Headline:       st.headline,
		ArticleCount:   0,
	}
	if err := uc.collections.Upsert(ctx, record); err != nil {
		slog.ErrorContext(ctx, "failure placeholder upsert failed",
			slog.String("collectionId", notif.CAPIID),
			slog.String("error", err.Error()),
			slog.String("module", "ingest"),
		)
	}
}

func (uc *IngestUsecase) writeAudit(ctx context.Context, st *pipelineState, collectionID string, rawPayload []byte) {
	entry := domain.AuditEntry{
		EventID:      st.eventID,
		CollectionID: collectionID,
		Message:      st.message,
		Payload:      string(rawPayload),
		Stage:        st.stage,
		CreatedAt:    uc.now(),
	}
	if err := uc.audit.Append(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "audit append failed",
			slog.String("eventId", st.eventID),
			slog.String("error", err.Error()),
			slog.String("module", "ingest"),
		)
	}
}

func (uc *IngestUsecase) publish(ctx context.Context, st *pipelineState, collectionID string) {
	if uc.events == nil {
		return
	}
	event := domain.IngestEvent{
		EventID:      st.eventID,
		CollectionID: collectionID,
		Outcome:      st.outcome.String(),
		ArticleCount: st.articleCount,
		Message:      st.message,
		Timestamp:    uc.now(),
		Kind:         st.outcome,
	}
	if err := uc.events.Publish(ctx, event); err != nil {
		slog.ErrorContext(ctx, "event publish failed",
			slog.String("eventId", st.eventID),
			slog.String("error", err.Error()),
			slog.String("module", "ingest"),
		)
	}
}

func placeholderJSON(code int, message string) string {
	b, _ := json.Marshal(domain.Placeholder{ErrCode: code, Message: message})
	return string(b)
}

func upstreamSnippet(err error) string {
	var ue *domain.UpstreamError
	if errors.As(err, &ue) && ue.Snippet != "" {
		return fmt.Sprintf("status %d: %s", ue.StatusCode, ue.Snippet)
	}
	return "no upstream response"
}
