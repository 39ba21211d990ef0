package bot

import (
	"testing"

	"github.com/hxnx/radiowave/config"
	"github.com/hxnx/radiowave/internal/database"
	"github.com/hxnx/radiowave/internal/store"
)

func TestPresenceText(t *testing.T) {
	if text := presenceText(0); text != "📻 /라디오 목록" {
		t.Errorf("Unexpected idle presence %q", text)
	}
	if text := presenceText(3); text != "📻 3개 서버에서 방송 중" {
		t.Errorf("Unexpected playing presence %q", text)
	}
}

func TestOpenStore_File(t *testing.T) {
	st, err := openStore(&config.Config{StoreBackend: config.StoreFile, DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}
	defer st.Close()

	if _, ok := st.(*store.FileStore); !ok {
		t.Errorf("Expected a file store, got %T", st)
	}
}

func TestOpenStore_SQLiteWithoutRedis(t *testing.T) {
	st, err := openStore(&config.Config{StoreBackend: config.StoreSQLite, SQLitePath: ":memory:"})
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}
	defer st.Close()

	if _, ok := st.(*database.StateRepository); !ok {
		t.Errorf("Expected the sqlite repository without a cache, got %T", st)
	}
}

func TestOpenStore_UnknownBackend(t *testing.T) {
	if _, err := openStore(&config.Config{StoreBackend: "mongo"}); err == nil {
		t.Errorf("Expected an error for an unknown backend")
	}
}
