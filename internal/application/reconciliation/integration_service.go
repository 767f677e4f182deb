package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/erp/reconciler/internal/domain/reconciliation"
	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/erp/reconciler/internal/infrastructure/logger"
	"github.com/erp/reconciler/internal/infrastructure/telemetry"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LockKeyPrefix namespaces the per-expense integration lock
const LockKeyPrefix = "reconciliation:expense:"

// DefaultLockTTL bounds how long a crashed caller can block an expense
const DefaultLockTTL = 30 * time.Second

// ExpenseIntegrationServiceConfig holds the collaborators of the integration service
type ExpenseIntegrationServiceConfig struct {
	Expenses   reconciliation.ExpenseRepository
	Handlers   *HandlerRegistry
	Classifier *reconciliation.Classifier
	Locker     shared.Locker
	LockTTL    time.Duration

	// Strict reports a failed secondary write as an unsuccessful integration.
	// When false the failure is returned as a warning instead.
	Strict bool

	Events  shared.EventPublisher
	Metrics *telemetry.IntegrationMetrics
	Logger  *zap.Logger
}

// ExpenseIntegrationService routes posted expenses into the vendor, payroll and
// fleet ledgers and links each expense back to the entry it produced.
type ExpenseIntegrationService struct {
	expenses   reconciliation.ExpenseRepository
	handlers   *HandlerRegistry
	classifier *reconciliation.Classifier
	locker     shared.Locker
	lockTTL    time.Duration
	strict     bool
	events     shared.EventPublisher
	metrics    *telemetry.IntegrationMetrics
	validate   *validator.Validate
	logger     *zap.Logger
}

// NewExpenseIntegrationService creates a new ExpenseIntegrationService
func NewExpenseIntegrationService(cfg ExpenseIntegrationServiceConfig) *ExpenseIntegrationService {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	classifier := cfg.Classifier
	if classifier == nil {
		classifier = reconciliation.DefaultClassifier()
	}
	handlers := cfg.Handlers
	if handlers == nil {
		handlers = NewHandlerRegistry()
	}
	ttl := cfg.LockTTL
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}

	return &ExpenseIntegrationService{
		expenses:   cfg.Expenses,
		handlers:   handlers,
		classifier: classifier,
		locker:     cfg.Locker,
		lockTTL:    ttl,
		strict:     cfg.Strict,
		events:     cfg.Events,
		metrics:    cfg.Metrics,
		validate:   newValidator(),
		logger:     log,
	}
}

// Classify previews the ledger and payment kind an expense would be routed to
func (s *ExpenseIntegrationService) Classify(ctx context.Context, category, subcategory string) ClassificationResult {
	entity := s.classifier.ResolveEntityType(category, subcategory)
	result := ClassificationResult{
		EntityType:  entity,
		PaymentKind: s.classifier.ResolvePaymentKindFor(entity, subcategory),
	}
	if s.metrics != nil {
		s.metrics.RecordClassification(ctx, result.EntityType.String(), result.PaymentKind.String())
	}
	return result
}

// target is the ledger an integration request resolved to
type target struct {
	entity   reconciliation.EntityType
	entityID uuid.UUID
	kind     reconciliation.PaymentKind
	explicit bool
}

// resolve picks the ledger for req. It returns a nil target and an optional
// warning when the expense belongs to no ledger.
func (s *ExpenseIntegrationService) resolve(req *IntegrationRequest) (*target, string) {
	kindFor := func(entity reconciliation.EntityType) reconciliation.PaymentKind {
		if req.PaymentKind != "" {
			return req.PaymentKind
		}
		return s.classifier.ResolvePaymentKindFor(entity, req.Subcategory)
	}

	if req.EntityType != reconciliation.EntityTypeNone && req.EntityID != nil {
		return &target{entity: req.EntityType, entityID: *req.EntityID, kind: kindFor(req.EntityType), explicit: true}, ""
	}

	entity := s.classifier.ResolveEntityType(req.Category, req.Subcategory)
	if entity == reconciliation.EntityTypeNone {
		return nil, ""
	}
	id := req.ledgerID(entity)
	if id == nil || *id == uuid.Nil {
		return nil, fmt.Sprintf("expense classified as %s but %s is missing; not integrated", entity, ledgerIDField(entity))
	}
	return &target{entity: entity, entityID: *id, kind: kindFor(entity)}, ""
}

// Integrate posts one expense into the ledger it resolves to.
//
// The returned error covers rejections that leave every ledger untouched: an
// invalid request, a busy or missing expense, or an expense already linked to a
// different entity. Everything after the primary ledger write is reported on the
// response, with Success false when the integration did not complete.
func (s *ExpenseIntegrationService) Integrate(ctx context.Context, req *IntegrationRequest) (*IntegrationResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "expense_integration", "integrate")
	defer span.End()

	started := time.Now()
	if req == nil {
		return nil, shared.NewValidationError("integration request is required")
	}
	ctx, log := logger.WithExpenseID(ctx, s.requestLogger(ctx), req.ExpenseID.String())
	telemetry.SetAttributes(span,
		telemetry.SpanAttrExpenseID, req.ExpenseID.String(),
		telemetry.SpanAttrCategory, req.Category,
		telemetry.SpanAttrSubcategory, req.Subcategory,
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	if err := validateRequest(s.validate, req); err != nil {
		telemetry.RecordError(span, err)
		s.recordOutcome(ctx, reconciliation.EntityTypeNone, telemetry.OutcomeRejected, err, started)
		return nil, err
	}

	tgt, warning := s.resolve(req)
	if tgt == nil {
		resp := newIntegrationResponse()
		if warning != "" {
			resp.Warnings = append(resp.Warnings, warning)
			log.Warn("Expense not integrated", zap.String("reason", warning))
		} else {
			log.Debug("Expense belongs to no subsidiary ledger",
				zap.String("category", req.Category),
				zap.String("subcategory", req.Subcategory),
			)
		}
		s.recordOutcome(ctx, reconciliation.EntityTypeNone, telemetry.OutcomeSuccess, nil, started)
		return resp, nil
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrEntityType, tgt.entity.String(),
		telemetry.SpanAttrEntityID, tgt.entityID.String(),
		telemetry.SpanAttrPaymentKind, tgt.kind.String(),
	)

	handler, ok := s.handlers.Get(tgt.entity)
	if !ok {
		err := shared.NewValidationError("no ledger handler registered for entity type %q", tgt.entity)
		telemetry.RecordError(span, err)
		s.recordOutcome(ctx, tgt.entity, telemetry.OutcomeRejected, err, started)
		return nil, err
	}

	lockKey := LockKeyPrefix + req.ExpenseID.String()
	telemetry.SetAttribute(span, telemetry.SpanAttrLockKey, lockKey)
	lock, err := s.obtainLock(ctx, lockKey)
	if err != nil {
		telemetry.RecordError(span, err)
		if errors.Is(err, shared.ErrLockNotObtained) && s.metrics != nil {
			s.metrics.RecordLockConflict(ctx)
		}
		s.recordOutcome(ctx, tgt.entity, telemetry.OutcomeRejected, err, started)
		return nil, err
	}
	defer func() {
		if lock == nil {
			return
		}
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			log.Warn("Failed to release integration lock", zap.String("key", lockKey), zap.Error(err))
		}
	}()

	expense, err := s.expenses.FindByID(ctx, req.ExpenseID)
	if err != nil {
		telemetry.RecordError(span, err)
		s.recordOutcome(ctx, tgt.entity, telemetry.OutcomeRejected, err, started)
		return nil, err
	}

	if link := expense.Link(); link != nil {
		if tgt.explicit && (link.EntityType != tgt.entity || link.EntityID != tgt.entityID) {
			err := shared.NewConflictError(shared.CodeAlreadyIntegrated,
				"expense %s is already linked to %s %s", expense.ID, link.EntityType, link.EntityID)
			telemetry.RecordError(span, err)
			s.recordOutcome(ctx, tgt.entity, telemetry.OutcomeRejected, err, started)
			return nil, err
		}

		log.Info("Expense already integrated, replaying stored outcome",
			zap.String("entity_type", link.EntityType.String()),
			zap.String("reference_id", link.ReferenceID.String()),
			zap.String("status", string(link.Outcome.Status)),
		)
		resp := replayResponse(link)
		telemetry.SetAttribute(span, telemetry.SpanAttrReplayed, true)
		s.recordOutcome(ctx, link.EntityType, telemetry.OutcomeReplayed, resp.Err, started)
		return resp, nil
	}

	result, err := handler.Handle(ctx, HandlerInput{
		Expense:     expense,
		EntityID:    tgt.entityID,
		PaymentKind: tgt.kind,
		Request:     req,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		log.Warn("Ledger write failed",
			zap.String("entity_type", tgt.entity.String()),
			zap.String("entity_id", tgt.entityID.String()),
			zap.Error(err),
		)
		resp := newIntegrationResponse()
		resp.Success = false
		resp.Error = err.Error()
		resp.ErrorCode = codeOrPersistence(err)
		resp.Err = err
		s.recordOutcome(ctx, tgt.entity, telemetry.OutcomeFailed, err, started)
		return resp, nil
	}

	// The verdict is computed as if the link succeeds so it can be stored with
	// the link; a failed link write replaces the pending step.
	steps := append(result.Steps, applied(StepLinkExpense))
	resp := s.evaluate(steps)
	link := reconciliation.EntityLink{
		EntityType:  tgt.entity,
		EntityID:    tgt.entityID,
		ReferenceID: result.ReferenceID,
		Outcome:     outcomeOf(resp),
	}
	linked := false
	if err := s.expenses.LinkEntity(ctx, expense.ID, link); err != nil {
		log.Error("Ledger entry written but expense not linked",
			zap.String("reference_id", result.ReferenceID.String()),
			zap.Error(err),
		)
		steps[len(steps)-1] = failed(StepLinkExpense, err)
		resp = s.evaluate(steps)
	} else {
		linked = true
	}
	result.Steps = steps
	s.recordStepWarnings(ctx, tgt.entity, steps)

	resp.Integrations[tgt.entity.String()] = IntegrationRecord{
		EntityID:    tgt.entityID,
		ReferenceID: result.ReferenceID,
		Steps:       result.Steps,
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrReferenceID, result.ReferenceID.String(),
		telemetry.SpanAttrWarnings, len(resp.Warnings),
	)

	if linked {
		if err := expense.LinkTo(link); err == nil {
			expense.AddDomainEvent(reconciliation.NewExpenseIntegratedEvent(expense, resp.Warnings))
		}
		s.publishPending(ctx, expense)
	}

	if resp.Success {
		telemetry.SetOK(span)
		if s.metrics != nil {
			s.metrics.RecordAmount(ctx, tgt.entity.String(), req.Amount)
		}
		s.recordOutcome(ctx, tgt.entity, telemetry.OutcomeSuccess, nil, started)
		log.Info("Expense integrated",
			zap.String("entity_type", tgt.entity.String()),
			zap.String("entity_id", tgt.entityID.String()),
			zap.String("reference_id", result.ReferenceID.String()),
			zap.Int("warnings", len(resp.Warnings)),
		)
	} else {
		telemetry.RecordError(span, resp.Err)
		s.recordOutcome(ctx, tgt.entity, telemetry.OutcomeFailed, resp.Err, started)
	}
	return resp, nil
}

// evaluate turns step outcomes into a response. Skipped steps are always
// warnings; failed steps fail the integration only in strict mode.
func (s *ExpenseIntegrationService) evaluate(steps []StepOutcome) *IntegrationResponse {
	resp := newIntegrationResponse()

	var failures []string
	var errs []error
	for _, step := range steps {
		switch step.Status {
		case StepSkipped:
			resp.Warnings = append(resp.Warnings, step.Step+": "+step.Message)
		case StepFailed:
			msg := step.Step + ": " + step.Message
			if !s.strict {
				resp.Warnings = append(resp.Warnings, msg)
				continue
			}
			failures = append(failures, msg)
			errs = append(errs, fmt.Errorf("%s: %w", step.Step, step.Err))
			if resp.ErrorCode == "" {
				resp.ErrorCode = step.Code
			}
		}
	}

	if len(failures) > 0 {
		resp.Success = false
		resp.Error = strings.Join(failures, "; ")
		resp.Err = errors.Join(errs...)
	}
	return resp
}

func (s *ExpenseIntegrationService) recordStepWarnings(ctx context.Context, entity reconciliation.EntityType, steps []StepOutcome) {
	if s.metrics == nil {
		return
	}
	for _, step := range steps {
		if step.Status == StepSkipped || step.Status == StepFailed {
			s.metrics.RecordStepWarning(ctx, entity.String(), step.Step, string(step.Status))
		}
	}
}

// outcomeOf is the verdict stored with the back-link
func outcomeOf(resp *IntegrationResponse) reconciliation.IntegrationOutcome {
	outcome := reconciliation.IntegrationOutcome{
		Status:   reconciliation.IntegrationStatusCompleted,
		Warnings: resp.Warnings,
	}
	if !resp.Success {
		outcome.Status = reconciliation.IntegrationStatusFailed
		outcome.ErrorCode = resp.ErrorCode
		outcome.Error = resp.Error
	}
	return outcome
}

// replayResponse reports the stored verdict of the integration that linked the
// expense, so a resubmission never turns a failure into a success.
func replayResponse(link *reconciliation.EntityLink) *IntegrationResponse {
	resp := newIntegrationResponse()
	resp.Replayed = true
	resp.Warnings = link.Outcome.Warnings
	resp.Integrations[link.EntityType.String()] = IntegrationRecord{
		EntityID:    link.EntityID,
		ReferenceID: link.ReferenceID,
	}
	if !link.Outcome.Succeeded() {
		resp.Success = false
		resp.ErrorCode = link.Outcome.ErrorCode
		if resp.ErrorCode == "" {
			resp.ErrorCode = shared.CodePersistence
		}
		resp.Error = link.Outcome.Error
		resp.Err = shared.NewDomainError(resp.ErrorCode, link.Outcome.Error)
	}
	return resp
}

// requestLogger is the service logger carrying the request and trace ids of ctx
func (s *ExpenseIntegrationService) requestLogger(ctx context.Context) *zap.Logger {
	log := s.logger
	if rid := logger.GetRequestID(ctx); rid != "" {
		log = log.With(zap.String("request_id", rid))
	}
	return logger.WithTrace(ctx, log)
}

func (s *ExpenseIntegrationService) obtainLock(ctx context.Context, key string) (shared.Lock, error) {
	if s.locker == nil {
		return nil, nil
	}
	lock, err := s.locker.Obtain(ctx, key, s.lockTTL)
	if err != nil {
		if errors.Is(err, shared.ErrLockNotObtained) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to obtain integration lock: %w", err)
	}
	return lock, nil
}

// publishPending drains the aggregate's recorded events to the publisher.
// Delivery failures are logged; the ledgers are already written.
func (s *ExpenseIntegrationService) publishPending(ctx context.Context, agg shared.AggregateRoot) {
	events := agg.GetDomainEvents()
	agg.ClearDomainEvents()
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		logger.L(ctx).Warn("Failed to publish integration events",
			zap.Int("count", len(events)),
			zap.Error(err),
		)
	}
}

func (s *ExpenseIntegrationService) recordOutcome(ctx context.Context, entity reconciliation.EntityType, outcome string, err error, started time.Time) {
	if s.metrics == nil {
		return
	}
	code := ""
	if err != nil {
		code = codeOrPersistence(err)
	}
	s.metrics.RecordIntegration(ctx, entity.String(), outcome, code, time.Since(started))
}

func codeOrPersistence(err error) string {
	if code := shared.CodeOf(err); code != "" {
		return code
	}
	return shared.CodePersistence
}
