package trade

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/erp/salesengine/internal/domain/audit"
	"github.com/erp/salesengine/internal/domain/catalog"
	"github.com/erp/salesengine/internal/domain/inventory"
	"github.com/erp/salesengine/internal/domain/partner"
	"github.com/erp/salesengine/internal/domain/shared"
	"github.com/erp/salesengine/internal/domain/trade"
	"github.com/erp/salesengine/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Audit model names
const (
	auditModelSale     = "sale"
	auditModelReturn   = "sale_return"
	auditModelCustomer = "customer"
)

// SaleService records sale submissions against inventory pools.
// A submission is validated, de-duplicated and committed as one transaction.
type SaleService struct {
	uow          UnitOfWork
	saleRepo     trade.SaleRepository
	validator    *SaleValidator
	duplicates   *DuplicateDetector
	availability *inventory.AvailabilityChecker
	pricing      *trade.PricingCalculator
	logger       *zap.Logger
	metrics      *telemetry.SalesMetrics
	now          func() time.Time
}

// NewSaleService creates a new SaleService
func NewSaleService(
	uow UnitOfWork,
	saleRepo trade.SaleRepository,
	validator *SaleValidator,
	duplicates *DuplicateDetector,
	availability *inventory.AvailabilityChecker,
	pricing *trade.PricingCalculator,
	logger *zap.Logger,
) *SaleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SaleService{
		uow:          uow,
		saleRepo:     saleRepo,
		validator:    validator,
		duplicates:   duplicates,
		availability: availability,
		pricing:      pricing,
		logger:       logger,
		now:          time.Now,
	}
}

// SetSalesMetrics sets the sales metrics collector
func (s *SaleService) SetSalesMetrics(sm *telemetry.SalesMetrics) {
	s.metrics = sm
	s.duplicates.SetSalesMetrics(sm)
}

// Create validates and records one or many sales as a single atomic batch.
// Any failure leaves every pool, ledger and directory untouched.
func (s *SaleService) Create(ctx context.Context, actx ActionContext, requests []trade.SaleRequest) ([]SaleResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "create")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrLines, len(requests),
		telemetry.SpanAttrActorID, actx.ActorID.String(),
	)

	start := time.Now()
	var sales []*trade.SaleRecord
	var err error
	telemetry.WithProfilingLabels(ctx, telemetry.OperationLabels("sale.create", nil), func(ctx context.Context) {
		sales, err = s.create(ctx, actx, requests)
	})
	s.metrics.RecordBatch(ctx, time.Since(start), outcomeOf(err))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	refs := make([]string, len(sales))
	for i, sale := range sales {
		refs[i] = sale.ReferenceCode
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrReference, refs)
	return ToSaleResponses(sales), nil
}

func (s *SaleService) create(ctx context.Context, actx ActionContext, requests []trade.SaleRequest) ([]*trade.SaleRecord, error) {
	if err := actx.Validate(); err != nil {
		return nil, err
	}

	batch, err := s.validator.Validate(ctx, requests)
	if err != nil {
		return nil, err
	}

	fingerprints, err := s.duplicates.Fingerprints(ctx, actx.ActorID, batch)
	if err != nil {
		return nil, err
	}
	if err := s.duplicates.CheckRecent(ctx, fingerprints); err != nil {
		return nil, err
	}

	demand := batch.DemandLines()
	if err := s.availability.Check(demand, batch.Pools); err != nil {
		return nil, err
	}

	var created []*trade.SaleRecord
	var pools map[uuid.UUID]*inventory.Pool
	err = s.uow.Execute(ctx, func(repos TransactionalRepositories) error {
		created = created[:0]

		pools, err = s.lockPools(ctx, repos, demand)
		if err != nil {
			return err
		}
		// Stock may have moved since the pre-check; the locked rows are authoritative.
		if err := s.availability.Check(demand, pools); err != nil {
			return err
		}

		today := truncateDay(s.now())
		customers := make(map[string]*partner.Customer)
		var products []uuid.UUID
		seenProducts := make(map[uuid.UUID]bool)

		for i, line := range batch.Lines {
			sale, err := s.recordLine(ctx, repos, actx, line, pools[line.Request.PoolID], fingerprints[i], customers, today)
			if err != nil {
				return err
			}
			created = append(created, sale)
			if !seenProducts[sale.ProductID] {
				seenProducts[sale.ProductID] = true
				products = append(products, sale.ProductID)
			}
		}

		for _, productID := range products {
			if err := recalculateAveragePrices(ctx, repos, productID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if shared.IsKind(err, shared.KindConflict) {
			s.logger.Warn("Sale submission rejected as duplicate",
				zap.String("actor_id", actx.ActorID.String()),
				zap.String("request_id", actx.RequestID),
				zap.Error(err))
		}
		return nil, err
	}

	s.duplicates.Remember(ctx, fingerprints)
	for _, pool := range pools {
		s.metrics.RecordPoolLevel(ctx, pool.BatchNumber, pool.CurrentQuantity)
	}
	refs := make([]string, len(created))
	for i, sale := range created {
		refs[i] = sale.ReferenceCode
		s.metrics.RecordSaleLine(ctx, string(sale.PaymentTerms), string(sale.PaymentMethod), sale.Quantity)
	}
	s.logger.Info("Sales recorded",
		zap.String("actor_id", actx.ActorID.String()),
		zap.String("request_id", actx.RequestID),
		zap.Strings("references", refs))

	return created, nil
}

// outcomeOf labels a submission result for metrics
func outcomeOf(err error) string {
	if err == nil {
		return "committed"
	}
	return strings.ToLower(shared.KindOf(err).String())
}

// lockPools row-locks every pool the batch draws from, in ascending id order
func (s *SaleService) lockPools(ctx context.Context, repos TransactionalRepositories, demand []inventory.DemandLine) (map[uuid.UUID]*inventory.Pool, error) {
	ids := inventory.PoolIDs(inventory.AggregateDemand(demand))
	locked, err := repos.PoolRepo().FindByIDsForUpdate(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("lock pools: %w", err)
	}
	pools := make(map[uuid.UUID]*inventory.Pool, len(locked))
	for i := range locked {
		pools[locked[i].ID] = &locked[i]
	}
	return pools, nil
}

// recordLine persists one sale and its inventory, ledger, history and audit effects
func (s *SaleService) recordLine(
	ctx context.Context,
	repos TransactionalRepositories,
	actx ActionContext,
	line ValidatedLine,
	pool *inventory.Pool,
	fingerprint string,
	customers map[string]*partner.Customer,
	today time.Time,
) (*trade.SaleRecord, error) {
	req := line.Request

	customer, err := resolveCustomer(ctx, repos, actx, req, customers)
	if err != nil {
		return nil, atLine(err, line.Line)
	}

	pricing, err := s.pricing.Calculate(trade.PricingInput{
		RetailPrice: pool.RetailPrice,
		Quantity:    req.Quantity,
		Discount:    req.Discount,
		AmountPaid:  req.AmountPaid,
		Terms:       req.PaymentTerms,
		DueDate:     req.DueDate,
		Today:       today,
	})
	if err != nil {
		return nil, atLine(err, line.Line)
	}

	occurrence, err := s.duplicates.CheckPersisted(ctx, repos.SaleRepo(), fingerprint, line.Line)
	if err != nil {
		return nil, err
	}

	ref, err := repos.ReferenceCodes().Next(ctx, trade.SaleReferencePrefix)
	if err != nil {
		return nil, fmt.Errorf("generate sale reference: %w", err)
	}

	sale, err := trade.NewSaleRecord(ref, req, pool, customer.ID, customer.Name, pricing, fingerprint, occurrence, actx.ActorID)
	if err != nil {
		return nil, atLine(err, line.Line)
	}
	if err := repos.SaleRepo().Create(ctx, sale); err != nil {
		if shared.IsKind(err, shared.KindConflict) {
			s.duplicates.RecordRace(ctx)
			return nil, duplicateSubmission(s.duplicates.ReplayWindow()).Wrap(err).AtLine(line.Line)
		}
		return nil, fmt.Errorf("create sale: %w", err)
	}

	previous, next, err := pool.Deduct(req.Quantity)
	if err != nil {
		return nil, atLine(err, line.Line)
	}
	if err := repos.PoolRepo().UpdateQuantity(ctx, pool); err != nil {
		return nil, fmt.Errorf("update pool quantity: %w", err)
	}

	movement, err := inventory.NewMovement(pool.ID, pool.ProductID, inventory.MovementTypeSaleOut,
		-req.Quantity, previous, next, ref, sale.ID)
	if err != nil {
		return nil, err
	}
	movement.WithActor(actx.ActorID).WithReason("Sale " + ref)
	if err := repos.MovementRepo().Create(ctx, movement); err != nil {
		return nil, fmt.Errorf("append movement: %w", err)
	}

	history, err := inventory.NewProductTransaction(pool.ProductID, pool.ID, inventory.ProductTransactionQuantityOut,
		req.Quantity, sale.UnitRetailPrice, ref, sale.ID, actx.ActorID)
	if err != nil {
		return nil, err
	}
	history.WithNotes(fmt.Sprintf("Sold to %s", customer.Name))
	if err := repos.ProductTransactionRepo().Create(ctx, history); err != nil {
		return nil, fmt.Errorf("append product transaction: %w", err)
	}

	entry, err := actx.auditEntry(auditModelSale, sale.ID, audit.ActionCreate,
		fmt.Sprintf("Sale %s: %d x %s (batch %s) to %s, final price %s, balance %s",
			ref, sale.Quantity, sale.ProductName, sale.BatchNumber, customer.Name,
			sale.FinalPrice.StringFixed(2), sale.Balance.StringFixed(2)))
	if err != nil {
		return nil, err
	}
	if err := repos.AuditRepo().Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("append audit entry: %w", err)
	}

	return sale, nil
}

// resolveCustomer returns the active customer a line refers to. A free-text
// name reuses a case-insensitive match or creates the customer, once per batch.
func resolveCustomer(
	ctx context.Context,
	repos TransactionalRepositories,
	actx ActionContext,
	req trade.SaleRequest,
	created map[string]*partner.Customer,
) (*partner.Customer, error) {
	if req.HasCustomerID() {
		c, err := repos.CustomerRepo().FindByID(ctx, *req.CustomerID)
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewReferenceNotFoundError("CUSTOMER_NOT_FOUND",
				fmt.Sprintf("Customer %s not found", req.CustomerID)).WithField("customer_id")
		}
		if err != nil {
			return nil, fmt.Errorf("lookup customer: %w", err)
		}
		if !c.IsActive() {
			return nil, shared.NewReferenceNotFoundError("CUSTOMER_INACTIVE",
				fmt.Sprintf("Customer %s is inactive", c.ID)).WithField("customer_id")
		}
		return c, nil
	}

	key := partner.NormalizeName(req.CustomerName)
	if c, ok := created[key]; ok {
		return c, nil
	}

	c, err := repos.CustomerRepo().FindActiveByNormalizedName(ctx, key)
	switch {
	case err == nil:
		created[key] = c
		return c, nil
	case !errors.Is(err, shared.ErrNotFound):
		return nil, fmt.Errorf("lookup customer by name: %w", err)
	}

	c, err = partner.NewAutoCreatedCustomer(req.CustomerName)
	if err != nil {
		return nil, err
	}
	if err := repos.CustomerRepo().Save(ctx, c); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	entry, err := actx.auditEntry(auditModelCustomer, c.ID, audit.ActionAutoCreate,
		fmt.Sprintf("Customer %q created automatically while recording a sale", c.Name))
	if err != nil {
		return nil, err
	}
	if err := repos.AuditRepo().Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("append audit entry: %w", err)
	}

	created[key] = c
	return c, nil
}

// recalculateAveragePrices refreshes a product's running averages from its ACTIVE pools
func recalculateAveragePrices(ctx context.Context, repos TransactionalRepositories, productID uuid.UUID) error {
	product, err := repos.ProductRepo().FindByID(ctx, productID)
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewReferenceNotFoundError("PRODUCT_NOT_FOUND", fmt.Sprintf("Product %s not found", productID))
	}
	if err != nil {
		return fmt.Errorf("lookup product: %w", err)
	}

	pools, err := repos.PoolRepo().FindActiveByProduct(ctx, productID)
	if err != nil {
		return fmt.Errorf("lookup active pools: %w", err)
	}
	prices := make([]catalog.PoolPrice, len(pools))
	for i, p := range pools {
		prices[i] = catalog.PoolPrice{CostPrice: p.CostPrice, RetailPrice: p.RetailPrice}
	}

	if !product.RecalculateAveragePrices(prices) {
		return nil
	}
	if err := repos.ProductRepo().UpdateAveragePrices(ctx, product); err != nil {
		return fmt.Errorf("update average prices: %w", err)
	}
	return nil
}

// GetByID returns a recorded sale
func (s *SaleService) GetByID(ctx context.Context, id uuid.UUID) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewReferenceNotFoundError("SALE_NOT_FOUND", fmt.Sprintf("Sale %s not found", id))
	}
	if err != nil {
		return nil, err
	}
	response := ToSaleResponse(sale)
	return &response, nil
}
