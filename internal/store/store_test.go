package store

import (
	"context"
	"io"
	"log"
	"os"
	"testing"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/openretail/possync/internal/database"
	"github.com/openretail/possync/internal/models"
	"github.com/openretail/possync/internal/sync"
)

const testCompany = "Main Store"

var testDB *database.DB

func TestMain(m *testing.M) {
	dataPath, err := os.MkdirTemp("", "possync-store-test-")
	if err != nil {
		log.Fatalf("create test data dir: %v", err)
	}

	ep := embeddedpostgres.NewDatabase(embeddedpostgres.DefaultConfig().
		DataPath(dataPath).
		Port(9433).
		Database("possync_test").
		Username("postgres").
		Password("postgres").
		Logger(io.Discard))
	if err := ep.Start(); err != nil {
		os.RemoveAll(dataPath)
		log.Fatalf("start embedded postgres: %v", err)
	}

	dsn := "host=localhost port=9433 user=postgres password=postgres dbname=possync_test sslmode=disable"
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		ep.Stop()
		log.Fatalf("connect to test database: %v", err)
	}
	if err := gdb.AutoMigrate(&models.Customer{}, &models.SyncConflict{}); err != nil {
		ep.Stop()
		log.Fatalf("migrate test schema: %v", err)
	}
	testDB = &database.DB{DB: gdb}

	code := m.Run()

	_ = ep.Stop()
	os.RemoveAll(dataPath)
	os.Exit(code)
}

func newCustomerStore(strategy string) *DocStore[models.Customer, *models.Customer] {
	return NewDocStore[models.Customer, *models.Customer](testDB, sync.DoctypeCustomer, sync.NewResolver(strategy))
}

// pulledCustomer builds a record the way a pull delivers it: remote id and
// write timestamp set, local bookkeeping empty.
func pulledCustomer(remoteID, name string) *models.Customer {
	rid := remoteID
	now := time.Now().UTC()
	return &models.Customer{
		SyncDocument: models.SyncDocument{RemoteID: &rid, RemoteModified: &now},
		CustomerName: name,
	}
}

// loadByRemoteID fetches the local row a pull created for a remote record.
func loadByRemoteID(t *testing.T, instanceID, remoteID string) models.Customer {
	t.Helper()
	var row models.Customer
	err := testDB.Where("instance_id = ? AND remote_id = ?", instanceID, remoteID).First(&row).Error
	if err != nil {
		t.Fatalf("No local row for remote id %s: %v", remoteID, err)
	}
	return row
}

// markPendingEdit simulates an offline edit of a previously synced row.
func markPendingEdit(t *testing.T, localID, newName string) {
	t.Helper()
	err := testDB.Model(&models.Customer{}).Where("local_id = ?", localID).
		Updates(map[string]interface{}{
			"sync_status":   models.SyncStatePending,
			"customer_name": newName,
		}).Error
	if err != nil {
		t.Fatalf("Could not mark row pending: %v", err)
	}
}

func conflictCount(t *testing.T, localID string) int64 {
	t.Helper()
	var n int64
	err := testDB.Model(&models.SyncConflict{}).
		Where("doc_type = ? AND local_id = ?", string(sync.DoctypeCustomer), localID).
		Count(&n).Error
	if err != nil {
		t.Fatalf("Count conflicts: %v", err)
	}
	return n
}

func TestDocStore_MarkSyncedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newCustomerStore("manual")
	inst := t.Name()

	cust := &models.Customer{CustomerName: "Walk-in"}
	if err := store.Insert(ctx, inst, testCompany, cust); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	outbox, err := store.PendingOutbox(ctx, inst, testCompany)
	if err != nil || len(outbox) != 1 {
		t.Fatalf("Expected one pending document, got %d (err=%v)", len(outbox), err)
	}

	ack := sync.Ack{RemoteID: "CUST-0001"}
	if err := store.MarkSynced(ctx, inst, testCompany, cust.LocalID, ack); err != nil {
		t.Fatalf("MarkSynced failed: %v", err)
	}

	// A replayed acknowledgement is a no-op.
	if err := store.MarkSynced(ctx, inst, testCompany, cust.LocalID, ack); err != nil {
		t.Errorf("Re-marking with the same remote id should succeed as a no-op, got: %v", err)
	}

	// A different remote id must never re-pair the document.
	if err := store.MarkSynced(ctx, inst, testCompany, cust.LocalID, sync.Ack{RemoteID: "CUST-0002"}); err == nil {
		t.Error("Re-marking with a different remote id must fail")
	}

	got, err := store.Get(ctx, inst, testCompany, cust.LocalID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.DocRemoteID() != "CUST-0001" {
		t.Errorf("Pairing must survive the refused re-mark, got remote id %q", got.DocRemoteID())
	}
	if got.SyncStatus != models.SyncStateSynced {
		t.Errorf("Expected status synced, got %q", got.SyncStatus)
	}

	outbox, err = store.PendingOutbox(ctx, inst, testCompany)
	if err != nil || len(outbox) != 0 {
		t.Errorf("Synced document must leave the outbox, got %d entries", len(outbox))
	}
}

func TestDocStore_MarkSyncedKeepsExistingPairing(t *testing.T) {
	ctx := context.Background()
	store := newCustomerStore("manual")
	inst := t.Name()

	if _, _, err := store.UpsertFromServer(ctx, inst, testCompany,
		[]*models.Customer{pulledCustomer("CUST-0100", "Paired")}); err != nil {
		t.Fatalf("Seed upsert failed: %v", err)
	}
	row := loadByRemoteID(t, inst, "CUST-0100")
	markPendingEdit(t, row.LocalID, "Paired, edited")

	// The row is pending again, but its pairing is permanent.
	err := store.MarkSynced(ctx, inst, testCompany, row.LocalID, sync.Ack{RemoteID: "CUST-0999"})
	if err == nil {
		t.Fatal("A paired document must refuse an acknowledgement under another remote id")
	}
}

func TestDocStore_UpsertFromServerIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newCustomerStore("manual")
	inst := t.Name()

	batch := func() []*models.Customer {
		return []*models.Customer{
			pulledCustomer("CUST-0201", "Alice"),
			pulledCustomer("CUST-0202", "Bob"),
			pulledCustomer("CUST-0203", "Carol"),
		}
	}

	changed, conflicts, err := store.UpsertFromServer(ctx, inst, testCompany, batch())
	if err != nil {
		t.Fatalf("First apply failed: %v", err)
	}
	if !changed || conflicts != 0 {
		t.Errorf("First apply of new records: want changed=true conflicts=0, got %v/%d", changed, conflicts)
	}

	// The same batch again, fresh write timestamps: the payload is
	// unchanged, so nothing moves locally.
	changed, conflicts, err = store.UpsertFromServer(ctx, inst, testCompany, batch())
	if err != nil {
		t.Fatalf("Second apply failed: %v", err)
	}
	if changed {
		t.Error("Re-applying an identical batch must report changed=false")
	}
	if conflicts != 0 {
		t.Errorf("Re-applying an identical batch must not record conflicts, got %d", conflicts)
	}

	var n int64
	if err := testDB.Model(&models.Customer{}).Where("instance_id = ?", inst).Count(&n).Error; err != nil || n != 3 {
		t.Errorf("Expected exactly 3 local rows, got %d (err=%v)", n, err)
	}
}

func TestDocStore_PendingEditIsNeverOverwritten(t *testing.T) {
	ctx := context.Background()
	store := newCustomerStore("manual")
	inst := t.Name()

	if _, _, err := store.UpsertFromServer(ctx, inst, testCompany,
		[]*models.Customer{pulledCustomer("CUST-0301", "Original")}); err != nil {
		t.Fatalf("Seed upsert failed: %v", err)
	}
	row := loadByRemoteID(t, inst, "CUST-0301")
	markPendingEdit(t, row.LocalID, "Edited at counter")

	changed, conflicts, err := store.UpsertFromServer(ctx, inst, testCompany,
		[]*models.Customer{pulledCustomer("CUST-0301", "Server version")})
	if err != nil {
		t.Fatalf("Colliding apply failed: %v", err)
	}
	if changed {
		t.Error("A pending local edit must not be overwritten by a pull")
	}
	if conflicts != 1 {
		t.Errorf("Expected one recorded conflict, got %d", conflicts)
	}

	kept := loadByRemoteID(t, inst, "CUST-0301")
	if kept.CustomerName != "Edited at counter" || kept.SyncStatus != models.SyncStatePending {
		t.Errorf("Local edit must survive the pull, got name=%q status=%q", kept.CustomerName, kept.SyncStatus)
	}

	// The same collision on the next run does not reopen a second conflict.
	_, conflicts, err = store.UpsertFromServer(ctx, inst, testCompany,
		[]*models.Customer{pulledCustomer("CUST-0301", "Server version")})
	if err != nil {
		t.Fatalf("Repeat apply failed: %v", err)
	}
	if conflicts != 0 {
		t.Errorf("Open conflict must not be duplicated, got %d new", conflicts)
	}
	if n := conflictCount(t, row.LocalID); n != 1 {
		t.Errorf("Expected exactly one conflict row, got %d", n)
	}
}

func TestDocStore_ClientWinsRecordsOneConflictPerRemoteVersion(t *testing.T) {
	ctx := context.Background()
	store := newCustomerStore("client_wins")
	inst := t.Name()

	if _, _, err := store.UpsertFromServer(ctx, inst, testCompany,
		[]*models.Customer{pulledCustomer("CUST-0401", "Original")}); err != nil {
		t.Fatalf("Seed upsert failed: %v", err)
	}
	row := loadByRemoteID(t, inst, "CUST-0401")
	markPendingEdit(t, row.LocalID, "Edited at counter")

	apply := func(serverName string) int {
		t.Helper()
		_, conflicts, err := store.UpsertFromServer(ctx, inst, testCompany,
			[]*models.Customer{pulledCustomer("CUST-0401", serverName)})
		if err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		return conflicts
	}

	if c := apply("Server v1"); c != 1 {
		t.Errorf("First collision should record one auto-resolved conflict, got %d", c)
	}
	// Every scheduled run re-pulls the same server version; the audit trail
	// must not grow.
	if c := apply("Server v1"); c != 0 {
		t.Errorf("Re-pulling the same server version must not add audit rows, got %d", c)
	}
	if c := apply("Server v1"); c != 0 {
		t.Errorf("Third pull of the same server version must still add nothing, got %d", c)
	}
	if n := conflictCount(t, row.LocalID); n != 1 {
		t.Fatalf("Expected one conflict row after repeated pulls, got %d", n)
	}

	var conflict models.SyncConflict
	if err := testDB.Where("doc_type = ? AND local_id = ?",
		string(sync.DoctypeCustomer), row.LocalID).First(&conflict).Error; err != nil {
		t.Fatalf("Load conflict: %v", err)
	}
	if !conflict.Resolved || conflict.Resolution == nil || *conflict.Resolution != "keep_local" {
		t.Error("client_wins collision should be recorded as resolved keep_local")
	}

	// A genuinely new server version is a new collision.
	if c := apply("Server v2"); c != 1 {
		t.Errorf("A changed server version should record a fresh conflict, got %d", c)
	}
	if n := conflictCount(t, row.LocalID); n != 2 {
		t.Errorf("Expected two conflict rows after a second server version, got %d", n)
	}

	kept := loadByRemoteID(t, inst, "CUST-0401")
	if kept.CustomerName != "Edited at counter" {
		t.Errorf("client_wins must keep the local edit, got %q", kept.CustomerName)
	}
}

func TestDocStore_RetryFailedRequeues(t *testing.T) {
	ctx := context.Background()
	store := newCustomerStore("manual")
	inst := t.Name()

	cust := &models.Customer{CustomerName: "Rejected"}
	if err := store.Insert(ctx, inst, testCompany, cust); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := store.MarkFailed(ctx, inst, testCompany, cust.LocalID, "missing tax id"); err != nil {
		t.Fatalf("MarkFailed failed: %v", err)
	}

	outbox, err := store.PendingOutbox(ctx, inst, testCompany)
	if err != nil || len(outbox) != 0 {
		t.Fatalf("Failed document must leave the outbox, got %d entries", len(outbox))
	}

	if err := store.RetryFailed(ctx, inst, testCompany, cust.LocalID); err != nil {
		t.Fatalf("RetryFailed failed: %v", err)
	}
	outbox, err = store.PendingOutbox(ctx, inst, testCompany)
	if err != nil || len(outbox) != 1 {
		t.Fatalf("Retried document must re-enter the outbox, got %d entries", len(outbox))
	}
	if outbox[0].Sync().SyncError != nil {
		t.Error("Retry must clear the recorded rejection reason")
	}

	// Retrying a document that is no longer failed is an error.
	if err := store.RetryFailed(ctx, inst, testCompany, cust.LocalID); err == nil {
		t.Error("RetryFailed on a pending document must fail")
	}
}

func TestDocStore_ApplyResolutionKeepLocal(t *testing.T) {
	ctx := context.Background()
	store := newCustomerStore("manual")
	inst := t.Name()

	if _, _, err := store.UpsertFromServer(ctx, inst, testCompany,
		[]*models.Customer{pulledCustomer("CUST-0501", "Original")}); err != nil {
		t.Fatalf("Seed upsert failed: %v", err)
	}
	row := loadByRemoteID(t, inst, "CUST-0501")
	markPendingEdit(t, row.LocalID, "Edited at counter")
	if _, _, err := store.UpsertFromServer(ctx, inst, testCompany,
		[]*models.Customer{pulledCustomer("CUST-0501", "Server version")}); err != nil {
		t.Fatalf("Colliding apply failed: %v", err)
	}

	var conflict models.SyncConflict
	if err := testDB.Where("doc_type = ? AND local_id = ? AND resolved = ?",
		string(sync.DoctypeCustomer), row.LocalID, false).First(&conflict).Error; err != nil {
		t.Fatalf("Load open conflict: %v", err)
	}

	if err := store.ApplyResolution(ctx, &conflict, "keep_local"); err != nil {
		t.Fatalf("ApplyResolution keep_local failed: %v", err)
	}

	outbox, err := store.PendingOutbox(ctx, inst, testCompany)
	if err != nil || len(outbox) != 1 {
		t.Fatalf("keep_local must leave the document queued for push, got %d entries", len(outbox))
	}
	if outbox[0].CustomerName != "Edited at counter" {
		t.Errorf("keep_local must keep the device version, got %q", outbox[0].CustomerName)
	}

	var closed models.SyncConflict
	if err := testDB.First(&closed, conflict.ID).Error; err != nil {
		t.Fatalf("Reload conflict: %v", err)
	}
	if !closed.Resolved || closed.Resolution == nil || *closed.Resolution != "keep_local" {
		t.Error("Conflict row must be closed as keep_local")
	}
}

func TestDocStore_ApplyResolutionTakeRemote(t *testing.T) {
	ctx := context.Background()
	store := newCustomerStore("manual")
	inst := t.Name()

	if _, _, err := store.UpsertFromServer(ctx, inst, testCompany,
		[]*models.Customer{pulledCustomer("CUST-0601", "Original")}); err != nil {
		t.Fatalf("Seed upsert failed: %v", err)
	}
	row := loadByRemoteID(t, inst, "CUST-0601")
	markPendingEdit(t, row.LocalID, "Edited at counter")
	if _, _, err := store.UpsertFromServer(ctx, inst, testCompany,
		[]*models.Customer{pulledCustomer("CUST-0601", "Server truth")}); err != nil {
		t.Fatalf("Colliding apply failed: %v", err)
	}

	var conflict models.SyncConflict
	if err := testDB.Where("doc_type = ? AND local_id = ? AND resolved = ?",
		string(sync.DoctypeCustomer), row.LocalID, false).First(&conflict).Error; err != nil {
		t.Fatalf("Load open conflict: %v", err)
	}

	if err := store.ApplyResolution(ctx, &conflict, "bogus"); err == nil {
		t.Error("An unknown resolution must be rejected")
	}

	if err := store.ApplyResolution(ctx, &conflict, "take_remote"); err != nil {
		t.Fatalf("ApplyResolution take_remote failed: %v", err)
	}

	// The row keeps its identity and scope but carries the server payload.
	applied := loadByRemoteID(t, inst, "CUST-0601")
	if applied.LocalID != row.LocalID {
		t.Errorf("take_remote must keep the local id, got %s", applied.LocalID)
	}
	if applied.CustomerName != "Server truth" {
		t.Errorf("take_remote must apply the server payload, got %q", applied.CustomerName)
	}
	if applied.SyncStatus != models.SyncStateSynced {
		t.Errorf("take_remote must leave the row synced, got %q", applied.SyncStatus)
	}

	outbox, err := store.PendingOutbox(ctx, inst, testCompany)
	if err != nil || len(outbox) != 0 {
		t.Errorf("take_remote must not queue anything for push, got %d entries", len(outbox))
	}
}
