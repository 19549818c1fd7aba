package mint

import (
	"context"
	"errors"
	"regexp"
	"testing"
)

var mockIDRx = regexp.MustCompile(`^ALGO_MOCK_\d+_\d+$`)

type failingMinter struct{}

func (failingMinter) Mint(ctx context.Context, a Asset) (string, error) {
	return "", errors.New("node unreachable")
}

type fixedMinter struct{ id string }

func (m fixedMinter) Mint(ctx context.Context, a Asset) (string, error) { return m.id, nil }

func TestMockTxID_Shape(t *testing.T) {
	for i := 0; i < 10; i++ {
		if id := MockTxID(); !mockIDRx.MatchString(id) {
			t.Fatalf("mock id %q does not match %s", id, mockIDRx)
		}
	}
}

func TestBestEffort_FailureYieldsMockID(t *testing.T) {
	id, real := BestEffort(context.Background(), failingMinter{}, Asset{Title: "t"})
	if real {
		t.Fatal("failed mint reported as real")
	}
	if !mockIDRx.MatchString(id) {
		t.Fatalf("fallback id %q does not match %s", id, mockIDRx)
	}
}

func TestBestEffort_NilMinterMocks(t *testing.T) {
	id, real := BestEffort(context.Background(), nil, Asset{})
	if real || !mockIDRx.MatchString(id) {
		t.Fatalf("nil minter: id=%q real=%v", id, real)
	}
}

func TestBestEffort_SuccessPassesThrough(t *testing.T) {
	id, real := BestEffort(context.Background(), fixedMinter{id: "TX123"}, Asset{})
	if !real || id != "TX123" {
		t.Fatalf("got id=%q real=%v", id, real)
	}
}
