package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
)

func TestClassifyScan(t *testing.T) {
	found, err := classifyScan("select monitor", nil)
	if !found || err != nil {
		t.Fatalf("nil scan error: want found, got found=%v err=%v", found, err)
	}

	found, err = classifyScan("select monitor", pgx.ErrNoRows)
	if found || err != nil {
		t.Fatalf("ErrNoRows must mean absent, not failure: found=%v err=%v", found, err)
	}

	boom := errors.New("connection reset")
	found, err = classifyScan("select monitor", boom)
	if found {
		t.Fatal("real error must not report the row as found")
	}
	if err == nil || !errors.Is(err, boom) {
		t.Fatalf("real error must surface wrapped, got %v", err)
	}
}
