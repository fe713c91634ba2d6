package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"openlms/internal/acquisition"
	"openlms/internal/catalog"
	"openlms/internal/circulation"
	"openlms/internal/config"
	"openlms/internal/database"
	"openlms/internal/eventbus"
	"openlms/internal/jsonrpc"
	"openlms/internal/organization"
	"openlms/internal/patron"
	"openlms/internal/serial"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg := config.Load()

	db, err := database.Connect(&cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	bus := eventbus.New(logger)

	catalogStore := catalog.NewStore(db)
	patronStore := patron.NewStore(db)
	organizationStore := organization.NewStore(db)
	circulationStore := circulation.NewStore(db)
	acquisitionStore := acquisition.NewStore(db)
	serialStore := serial.NewStore(db)

	staffDir := &staffDirectory{staff: organizationStore}
	catalogDir := &catalogDirectory{items: catalogStore, copies: catalogStore}

	patronUniqueness := patron.NewUniquenessService(patronStore)
	barring := patron.NewBarringService(patronStore, circulationStore)
	holding := patron.NewHoldingService(circulationStore)
	reinstatement := patron.NewReinstatementService(patronStore, circulationStore)
	finePolicy := patron.NewFinePolicyService(catalogStore, catalogStore)

	branchUniqueness := organization.NewBranchUniquenessService(organizationStore)
	staffUniqueness := organization.NewStaffUniquenessService(organizationStore)
	branchAssignment := organization.NewBranchAssignmentService(organizationStore, organizationStore)

	loanPolicy := circulation.NewLoanPolicyService()
	holdPolicy := circulation.NewHoldPolicyService()

	itemService := catalog.NewItemService(catalogStore, catalogStore, catalogStore, catalogStore, bus, logger)
	copyService := catalog.NewCopyService(catalogStore)
	authorService := catalog.NewAuthorService(catalogStore, bus, logger)
	categoryService := catalog.NewCategoryService(catalogStore, bus, logger)
	publisherService := catalog.NewPublisherService(catalogStore, bus, logger)

	registrationLimiter := rate.NewLimiter(
		rate.Every(cfg.Patrons.RegistrationInterval), cfg.Patrons.RegistrationBurst)
	patronService := patron.NewPatronService(
		patronStore, patronUniqueness, reinstatement, registrationLimiter, bus, logger)
	fineService := patron.NewFineService(patronStore, finePolicy, bus, logger)

	branchService := organization.NewBranchService(
		organizationStore, branchUniqueness, branchAssignment, bus, logger)
	staffService := organization.NewStaffService(organizationStore, staffUniqueness, bus, logger)

	loanService := circulation.NewLoanService(
		circulationStore, patronStore, catalogStore, staffDir, barring, loanPolicy, bus, logger)
	holdService := circulation.NewHoldService(
		circulationStore, patronStore, catalogStore, catalogStore, staffDir,
		holding, barring, holdPolicy, loanPolicy, bus, logger)

	vendorService := acquisition.NewVendorService(acquisitionStore, staffDir, bus, logger)
	orderService := acquisition.NewAcquisitionOrderService(
		acquisitionStore, acquisitionStore, catalogDir, staffDir, bus, logger)

	serialService := serial.NewSerialService(
		serialStore, serialStore, catalogDir, catalogDir, bus, logger)

	subscribe(bus, organizationStore, itemService, fineService, holdService, staffService)

	server := jsonrpc.NewServer(logger)
	catalog.NewHandler(itemService, copyService, authorService, categoryService, publisherService).Register(server)
	patron.NewHandler(patronService, fineService).Register(server)
	organization.NewHandler(branchService, staffService).Register(server)
	circulation.NewHandler(loanService, holdService).Register(server)
	acquisition.NewHandler(vendorService, orderService).Register(server)
	serial.NewHandler(serialService).Register(server)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	router.Post("/rpc", server.ServeHTTP)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Server.Port)
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// subscribe wires the cross-aggregate cascades: a returned copy readies the
// oldest pending hold, late or mishandled loans produce fines, a fully
// received order adds copies to the catalog, and a newly assigned manager
// is moved to their branch.
func subscribe(
	bus *eventbus.Bus,
	staff *organization.Store,
	items *catalog.ItemService,
	fines *patron.FineService,
	holds *circulation.HoldService,
	staffService *organization.StaffService,
) {
	bus.Subscribe(circulation.EventLoanReturned, func(ctx context.Context, event eventbus.Event) error {
		e, ok := event.(circulation.LoanReturnedEvent)
		if !ok {
			return nil
		}
		return holds.ProcessHoldsForReturnedCopy(ctx, e.CopyID)
	})

	bus.Subscribe(circulation.EventLoanOverdue, func(ctx context.Context, event eventbus.Event) error {
		e, ok := event.(circulation.LoanOverdueEvent)
		if !ok {
			return nil
		}
		_, err := fines.ProcessOverdueLoan(ctx, e.LoanID, e.PatronID, e.DaysLate)
		return err
	})

	bus.Subscribe(circulation.EventLoanDamaged, func(ctx context.Context, event eventbus.Event) error {
		e, ok := event.(circulation.LoanDamagedEvent)
		if !ok {
			return nil
		}
		_, err := fines.ProcessDamagedLoan(ctx, e.LoanID, e.PatronID, e.CopyID)
		return err
	})

	bus.Subscribe(circulation.EventLoanLost, func(ctx context.Context, event eventbus.Event) error {
		e, ok := event.(circulation.LoanLostEvent)
		if !ok {
			return nil
		}
		_, err := fines.ProcessLostLoan(ctx, e.LoanID, e.PatronID, e.CopyID)
		return err
	})

	bus.Subscribe(acquisition.EventOrderReceived, func(ctx context.Context, event eventbus.Event) error {
		e, ok := event.(acquisition.OrderReceivedEvent)
		if !ok {
			return nil
		}
		member, err := staff.StaffByID(ctx, e.StaffID)
		if err != nil {
			return err
		}
		if member.BranchID == nil {
			return fmt.Errorf("staff %s has no branch to receive order %s into", e.StaffID, e.OrderID)
		}
		for _, line := range e.ItemLines {
			for i := 0; i < line.Quantity; i++ {
				if _, err := items.AddCopyToItem(ctx, line.ItemID, *member.BranchID, "", "", e.AcquisitionDate); err != nil {
					return err
				}
			}
		}
		return nil
	})

	bus.Subscribe(organization.EventManagerAssigned, func(ctx context.Context, event eventbus.Event) error {
		e, ok := event.(organization.ManagerAssignedToBranchEvent)
		if !ok {
			return nil
		}
		_, err := staffService.AssignStaffToBranch(ctx, e.ManagerID, e.BranchID)
		return err
	})
}

// staffDirectory adapts the organization store to the StaffExists checks
// the other contexts depend on.
type staffDirectory struct {
	staff organization.StaffLookup
}

func (d *staffDirectory) StaffExists(ctx context.Context, id uuid.UUID) error {
	_, err := d.staff.StaffByID(ctx, id)
	return err
}

// catalogDirectory adapts the catalog store to existence checks.
type catalogDirectory struct {
	items  catalog.ItemRepository
	copies catalog.CopyRepository
}

func (d *catalogDirectory) ItemExists(ctx context.Context, id uuid.UUID) error {
	_, err := d.items.ItemByID(ctx, id)
	return err
}

func (d *catalogDirectory) CopyExists(ctx context.Context, id uuid.UUID) error {
	_, err := d.copies.CopyByID(ctx, id)
	return err
}
