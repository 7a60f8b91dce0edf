package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/audit"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/authz"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/export"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/port"
)

// exportPageSize is the listing batch used while filling a register.
const exportPageSize = 500

// exportBranchCap bounds an all-branch sweep.
const exportBranchCap = 1000

// ExportService builds xlsx register workbooks. Branch admins export their
// own branch; superadmins any branch, or every branch at once by passing no
// branch at all.
type ExportService interface {
	ReportsRegister(ctx context.Context, actor authz.Principal, branchID uuid.UUID, filters domain.ReportFilters) (*export.Workbook, string, error)
	OffersRegister(ctx context.Context, actor authz.Principal, branchID uuid.UUID, filters domain.OfferFilters) (*export.Workbook, string, error)
}

type exportService struct {
	reportRepo   port.ReportRepository
	offerRepo    port.OfferRepository
	customerRepo port.CustomerRepository
	buildingRepo port.BuildingRepository
	userRepo     port.UserRepository
	branchRepo   port.BranchRepository
	auditor      *audit.Dispatcher
	logger       *zap.Logger
}

// NewExportService creates a new ExportService implementation.
func NewExportService(
	reportRepo port.ReportRepository,
	offerRepo port.OfferRepository,
	customerRepo port.CustomerRepository,
	buildingRepo port.BuildingRepository,
	userRepo port.UserRepository,
	branchRepo port.BranchRepository,
	auditor *audit.Dispatcher,
	logger *zap.Logger,
) ExportService {
	return &exportService{
		reportRepo:   reportRepo,
		offerRepo:    offerRepo,
		customerRepo: customerRepo,
		buildingRepo: buildingRepo,
		userRepo:     userRepo,
		branchRepo:   branchRepo,
		auditor:      auditor,
		logger:       logger,
	}
}

func (s *exportService) ReportsRegister(ctx context.Context, actor authz.Principal, branchID uuid.UUID, filters domain.ReportFilters) (*export.Workbook, string, error) {
	branches, scope, err := s.scope(ctx, actor, branchID)
	if err != nil {
		return nil, "", err
	}

	names := newNameCache(s.customerRepo, s.buildingRepo, s.userRepo, s.logger)
	var rows []export.ReportRow
	for i := range branches {
		branch := &branches[i]
		reports, err := s.listAllReports(ctx, branch.ID, filters)
		if err != nil {
			return nil, "", err
		}
		for j := range reports {
			r := &reports[j]
			rows = append(rows, export.ReportRow{
				Branch:         branch.Name,
				Title:          r.Title,
				Status:         string(r.Status),
				Customer:       names.customer(ctx, r.CustomerID),
				Building:       names.building(ctx, r.BuildingID),
				Inspector:      names.user(ctx, r.InspectorID),
				ScheduledFor:   r.ScheduledFor,
				InspectedAt:    r.InspectedAt,
				ConditionGrade: r.RoofConditionGrade,
				FindingCount:   r.FindingCount,
				CreatedAt:      r.CreatedAt,
			})
		}
	}

	wb, err := export.NewWorkbook()
	if err != nil {
		return nil, "", fmt.Errorf("building workbook: %w", err)
	}
	if err := wb.AddReportsSheet(rows); err != nil {
		_ = wb.Close()
		return nil, "", fmt.Errorf("building workbook: %w", err)
	}

	s.recordExport(actor, branches, "report_register", len(rows))
	return wb, export.BuildFilename("reports_" + scope), nil
}

func (s *exportService) OffersRegister(ctx context.Context, actor authz.Principal, branchID uuid.UUID, filters domain.OfferFilters) (*export.Workbook, string, error) {
	branches, scope, err := s.scope(ctx, actor, branchID)
	if err != nil {
		return nil, "", err
	}

	names := newNameCache(s.customerRepo, s.buildingRepo, s.userRepo, s.logger)
	var rows []export.OfferRow
	for i := range branches {
		branch := &branches[i]
		offers, err := s.listAllOffers(ctx, branch.ID, filters)
		if err != nil {
			return nil, "", err
		}
		for j := range offers {
			o := &offers[j]
			rows = append(rows, export.OfferRow{
				Branch:     branch.Name,
				Title:      o.Title,
				Status:     string(o.Status),
				Customer:   names.customer(ctx, o.CustomerID),
				Currency:   o.Currency,
				Subtotal:   o.Subtotal,
				VATAmount:  o.VATAmount,
				Total:      o.Total,
				ValidUntil: o.ValidUntil,
				SentAt:     o.SentAt,
				DecidedAt:  o.DecidedAt,
				CreatedAt:  o.CreatedAt,
			})
		}
	}

	wb, err := export.NewWorkbook()
	if err != nil {
		return nil, "", fmt.Errorf("building workbook: %w", err)
	}
	if err := wb.AddOffersSheet(rows); err != nil {
		_ = wb.Close()
		return nil, "", fmt.Errorf("building workbook: %w", err)
	}

	s.recordExport(actor, branches, "offer_register", len(rows))
	return wb, export.BuildFilename("offers_" + scope), nil
}

// scope resolves which branches an export covers and a slug for the
// filename. A superadmin passing no branch gets every branch.
func (s *exportService) scope(ctx context.Context, actor authz.Principal, branchID uuid.UUID) ([]domain.Branch, string, error) {
	if branchID == uuid.Nil && actor.IsSuperadmin() {
		all, _, err := s.branchRepo.List(ctx, 0, exportBranchCap)
		if err != nil {
			return nil, "", err
		}
		return all, "all_branches", nil
	}

	resolved, err := authz.ResolveBranch(actor, branchID)
	if err != nil {
		return nil, "", err
	}
	if !authz.CanExportBranch(actor, resolved) {
		return nil, "", domain.ErrForbidden
	}
	branch, err := s.branchRepo.GetByID(ctx, resolved)
	if err != nil {
		return nil, "", err
	}
	return []domain.Branch{*branch}, branch.Slug, nil
}

func (s *exportService) listAllReports(ctx context.Context, branchID uuid.UUID, filters domain.ReportFilters) ([]domain.Report, error) {
	var all []domain.Report
	filters.Offset = 0
	filters.Limit = exportPageSize
	for {
		page, total, err := s.reportRepo.ListByBranch(ctx, branchID, filters)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		filters.Offset += len(page)
		if len(page) == 0 || filters.Offset >= total {
			return all, nil
		}
	}
}

func (s *exportService) listAllOffers(ctx context.Context, branchID uuid.UUID, filters domain.OfferFilters) ([]domain.Offer, error) {
	var all []domain.Offer
	filters.Offset = 0
	filters.Limit = exportPageSize
	for {
		page, total, err := s.offerRepo.ListByBranch(ctx, branchID, filters)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		filters.Offset += len(page)
		if len(page) == 0 || filters.Offset >= total {
			return all, nil
		}
	}
}

func (s *exportService) recordExport(actor authz.Principal, branches []domain.Branch, register string, rowCount int) {
	ev := audit.Event{
		ActorID:    &actor.UserID,
		ActorEmail: actor.Email,
		Action:     domain.AuditActionExport,
		EntityType: register,
		Metadata:   map[string]any{"rows": rowCount, "branches": len(branches)},
	}
	if len(branches) == 1 {
		ev.BranchID = &branches[0].ID
		ev.EntityID = branches[0].ID
	}
	s.auditor.Record(ev)
}

// nameCache resolves referenced ids to display names once per export. A
// lookup failure leaves the cell empty instead of failing the download.
type nameCache struct {
	customerRepo port.CustomerRepository
	buildingRepo port.BuildingRepository
	userRepo     port.UserRepository
	logger       *zap.Logger

	customers map[uuid.UUID]string
	buildings map[uuid.UUID]string
	users     map[uuid.UUID]string
}

func newNameCache(customerRepo port.CustomerRepository, buildingRepo port.BuildingRepository, userRepo port.UserRepository, logger *zap.Logger) *nameCache {
	return &nameCache{
		customerRepo: customerRepo,
		buildingRepo: buildingRepo,
		userRepo:     userRepo,
		logger:       logger,
		customers:    make(map[uuid.UUID]string),
		buildings:    make(map[uuid.UUID]string),
		users:        make(map[uuid.UUID]string),
	}
}

func (c *nameCache) customer(ctx context.Context, id uuid.UUID) string {
	if name, ok := c.customers[id]; ok {
		return name
	}
	name := ""
	if customer, err := c.customerRepo.GetByID(ctx, id); err == nil {
		name = customer.Name
	} else {
		c.logger.Debug("export customer lookup failed", zap.String("customer_id", id.String()), zap.Error(err))
	}
	c.customers[id] = name
	return name
}

func (c *nameCache) building(ctx context.Context, id uuid.UUID) string {
	if name, ok := c.buildings[id]; ok {
		return name
	}
	name := ""
	if building, err := c.buildingRepo.GetByID(ctx, id); err == nil {
		name = building.Label
		if name == "" {
			name = building.AddressLine
		}
	} else {
		c.logger.Debug("export building lookup failed", zap.String("building_id", id.String()), zap.Error(err))
	}
	c.buildings[id] = name
	return name
}

func (c *nameCache) user(ctx context.Context, id uuid.UUID) string {
	if name, ok := c.users[id]; ok {
		return name
	}
	name := ""
	if user, err := c.userRepo.GetByID(ctx, id); err == nil {
		name = user.FullName
	} else {
		c.logger.Debug("export user lookup failed", zap.String("user_id", id.String()), zap.Error(err))
	}
	c.users[id] = name
	return name
}
