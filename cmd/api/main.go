package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openretail/possync/internal/cache"
	"github.com/openretail/possync/internal/config"
	"github.com/openretail/possync/internal/database"
	"github.com/openretail/possync/internal/handlers"
	"github.com/openretail/possync/internal/models"
	"github.com/openretail/possync/internal/receipt"
	"github.com/openretail/possync/internal/remote"
	"github.com/openretail/possync/internal/store"
	possync "github.com/openretail/possync/internal/sync"
	"github.com/openretail/possync/internal/websocket"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	syncCfg := config.LoadSyncConfig()

	// 2. Initialize database (detects embedded vs external automatically)
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// 3. Auto-migrate schema
	log.Println("🚀 Synchronizing database schema...")
	err = db.AutoMigrate(
		// Catalog (pulled)
		&models.ItemGroup{},
		&models.Item{},
		&models.ItemPrice{},
		&models.StockBin{},
		&models.Customer{},

		// Selling documents (pushed)
		&models.Quotation{},
		&models.QuotationItem{},
		&models.SalesOrder{},
		&models.SalesOrderItem{},
		&models.DeliveryNote{},
		&models.DeliveryNoteItem{},
		&models.SalesInvoice{},
		&models.SalesInvoiceItem{},
		&models.SalesInvoicePayment{},
		&models.PaymentEntry{},

		// Sync tables
		&models.SyncMetadata{},
		&models.SyncConflict{},
	)
	if err != nil {
		log.Printf("⚠️ Migration warning: %v\n", err)
	} else {
		log.Println("✅ Schema synchronized successfully")
	}

	// 4. Remote server client
	client := remote.NewClient(cfg.Remote.URL, cfg.Remote.Database, cfg.Remote.Username, cfg.Remote.Password)
	authCtx, cancelAuth := context.WithTimeout(context.Background(), 30*time.Second)
	if _, err := client.Authenticate(authCtx); err != nil {
		// Offline start is normal for a terminal; the engine retries later.
		log.Printf("⚠️ Server not reachable at startup: %v", err)
	}
	cancelAuth()

	// 5. Stores and sync units
	resolver := possync.NewResolver(syncCfg.ConflictResolution)

	groupStore := store.NewDocStore[models.ItemGroup, *models.ItemGroup](db, possync.DoctypeItemGroup, resolver)
	itemStore := store.NewDocStore[models.Item, *models.Item](db, possync.DoctypeItem, resolver)
	priceStore := store.NewDocStore[models.ItemPrice, *models.ItemPrice](db, possync.DoctypeItemPrice, resolver)
	binStore := store.NewDocStore[models.StockBin, *models.StockBin](db, possync.DoctypeStockBin, resolver)
	customerStore := store.NewDocStore[models.Customer, *models.Customer](db, possync.DoctypeCustomer, resolver)
	quotationStore := store.NewDocStore[models.Quotation, *models.Quotation](db, possync.DoctypeQuotation, resolver, "Items")
	orderStore := store.NewDocStore[models.SalesOrder, *models.SalesOrder](db, possync.DoctypeSalesOrder, resolver, "Items")
	noteStore := store.NewDocStore[models.DeliveryNote, *models.DeliveryNote](db, possync.DoctypeDeliveryNote, resolver, "Items")
	invoiceStore := store.NewDocStore[models.SalesInvoice, *models.SalesInvoice](db, possync.DoctypeSalesInvoice, resolver, "Items", "Payments")
	paymentStore := store.NewDocStore[models.PaymentEntry, *models.PaymentEntry](db, possync.DoctypePaymentEntry, resolver)

	var units []possync.Unit
	addUnit := func(dt possync.Doctype, u possync.Unit) {
		if syncCfg.Enabled(string(dt)) {
			units = append(units, u)
		}
	}
	addUnit(possync.DoctypeItemGroup, possync.NewDocUnit[*models.ItemGroup](possync.DoctypeItemGroup, groupStore, remote.NewItemGroupRemote(client)))
	addUnit(possync.DoctypeItem, possync.NewDocUnit[*models.Item](possync.DoctypeItem, itemStore, remote.NewItemRemote(client)))
	addUnit(possync.DoctypeItemPrice, possync.NewDocUnit[*models.ItemPrice](possync.DoctypeItemPrice, priceStore, remote.NewItemPriceRemote(client)))
	addUnit(possync.DoctypeStockBin, possync.NewDocUnit[*models.StockBin](possync.DoctypeStockBin, binStore, remote.NewStockBinRemote(client)))
	addUnit(possync.DoctypeCustomer, possync.NewDocUnit[*models.Customer](possync.DoctypeCustomer, customerStore, remote.NewCustomerRemote(client)))
	addUnit(possync.DoctypeQuotation, possync.NewDocUnit[*models.Quotation](possync.DoctypeQuotation, quotationStore, remote.NewQuotationRemote(client)))
	addUnit(possync.DoctypeSalesOrder, possync.NewDocUnit[*models.SalesOrder](possync.DoctypeSalesOrder, orderStore, remote.NewSalesOrderRemote(client)))
	addUnit(possync.DoctypeDeliveryNote, possync.NewDocUnit[*models.DeliveryNote](possync.DoctypeDeliveryNote, noteStore, remote.NewDeliveryNoteRemote(client)))
	addUnit(possync.DoctypeSalesInvoice, possync.NewDocUnit[*models.SalesInvoice](possync.DoctypeSalesInvoice, invoiceStore, remote.NewSalesInvoiceRemote(client)))
	addUnit(possync.DoctypePaymentEntry, possync.NewDocUnit[*models.PaymentEntry](possync.DoctypePaymentEntry, paymentStore, remote.NewPaymentEntryRemote(client)))

	// 6. Engine with event hub and run recording
	hub := websocket.NewHub()
	go hub.Run()

	contextFn := func() possync.Context {
		return possync.Context{
			InstanceID:  cfg.Device.InstanceID,
			CompanyID:   cfg.Device.CompanyID,
			TerritoryID: cfg.Device.Territory,
			WarehouseID: cfg.Device.Warehouse,
			PriceList:   cfg.Device.PriceList,
			FromDate:    syncCfg.FromDate,
		}
	}

	autoInterval := time.Duration(0)
	if syncCfg.AutoSyncEnabled {
		autoInterval = time.Duration(syncCfg.AutoSyncInterval) * time.Second
	}

	metadata := store.NewMetadataStore(db)
	engine := possync.NewEngine(units, possync.Options{
		ContextFn:        contextFn,
		ParallelSync:     syncCfg.ParallelSync,
		AutoSyncInterval: autoInterval,
		RunTimeout:       time.Duration(syncCfg.SyncTimeout) * time.Second,
		SyncOnStartup:    syncCfg.SyncOnStartup,
		Recorder:         metadata,
		Notifier:         hub,
	})

	// 7. Snapshot caches, invalidated on catalog and customer changes
	catalogCache := cache.New()
	customerCache := cache.New()
	for _, dt := range []possync.Doctype{possync.DoctypeItemGroup, possync.DoctypeItem, possync.DoctypeItemPrice, possync.DoctypeStockBin} {
		engine.RegisterInvalidator(dt, catalogCache)
	}
	engine.RegisterInvalidator(possync.DoctypeCustomer, customerCache)

	if err := engine.Start(); err != nil {
		log.Printf("⚠️ Sync engine: failed to start: %v", err)
	}

	// 8. HTTP surface
	conflicts := store.NewConflictStore(db,
		groupStore, itemStore, priceStore, binStore, customerStore,
		quotationStore, orderStore, noteStore, invoiceStore, paymentStore,
	)
	outboxes := []store.OutboxReporter{
		customerStore, quotationStore, orderStore, noteStore, invoiceStore, paymentStore,
	}

	receiptCfg := receipt.ReceiptConfig{
		ShopName:   getEnv("SHOP_NAME", "POS Terminal"),
		Address:    os.Getenv("SHOP_ADDRESS"),
		Footer:     getEnv("RECEIPT_FOOTER", "Thank you for your purchase"),
		LookupBase: os.Getenv("RECEIPT_LOOKUP_BASE"),
	}

	router := handlers.NewRouter(hub)
	router.Register(handlers.NewSyncHandler(engine, contextFn, metadata, conflicts, outboxes))
	router.Register(handlers.NewPOSHandler(engine, contextFn, invoiceStore, customerStore, paymentStore, receiptCfg))
	router.Register(handlers.NewCatalogHandler(contextFn, catalogCache, customerCache, itemStore, groupStore, priceStore, binStore, customerStore))

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router.Handler(),
	}

	// 9. Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("🌐 POS sync daemon listening on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("🛑 Shutting down...")

	engine.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("⚠️ Server shutdown: %v", err)
	}

	if err := db.Close(); err != nil {
		log.Printf("⚠️ Database close: %v", err)
	}
	log.Println("✅ Shutdown complete")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
