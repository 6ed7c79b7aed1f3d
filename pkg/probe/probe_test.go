package probe

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestRunEachRunsEveryAttemptDespiteFailures(t *testing.T) {
	var mu sync.Mutex
	ran := make([]bool, 5)
	failures := 0

	RunEach(context.Background(), 5, func(ctx context.Context, index int) {
		mu.Lock()
		defer mu.Unlock()
		ran[index] = true
		if index == 2 {
			failures++
		}
	})

	for i, v := range ran {
		if !v {
			t.Errorf("attempt %d did not run", i)
		}
	}
	if failures != 1 {
		t.Errorf("failures = %d, want 1 (a failing attempt must not stop its siblings)", failures)
	}
}

func TestRunEachAllSucceed(t *testing.T) {
	var ran [3]bool
	RunEach(context.Background(), 3, func(ctx context.Context, index int) {
		ran[index] = true
	})
	for i, v := range ran {
		if !v {
			t.Errorf("attempt %d did not run", i)
		}
	}
}

func TestRunSetMergesAllResults(t *testing.T) {
	sum, err := RunSet(context.Background(), 4,
		func(ctx context.Context, index int) (int, error) { return index + 1, nil },
		func(a, b int) int { return a + b },
	)
	if err != nil {
		t.Fatalf("RunSet() error = %v", err)
	}
	if sum != 10 { // 1+2+3+4
		t.Errorf("sum = %d, want 10", sum)
	}
}

func TestRunSetDefaultsBelowOneToOneInstance(t *testing.T) {
	calls := 0
	_, err := RunSet(context.Background(), 0,
		func(ctx context.Context, index int) (int, error) { calls++; return index, nil },
		func(a, b int) int { return a + b },
	)
	if err != nil {
		t.Fatalf("RunSet() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRunSetPropagatesErrorWithPartialResult(t *testing.T) {
	want := errors.New("boom")
	sum, err := RunSet(context.Background(), 3,
		func(ctx context.Context, index int) (int, error) {
			if index == 1 {
				return 0, want
			}
			return 1, nil
		},
		func(a, b int) int { return a + b },
	)
	if !errors.Is(err, want) {
		t.Fatalf("RunSet() error = %v, want %v", err, want)
	}
	if sum != 2 {
		t.Errorf("sum = %d, want 2 (two successful instances contributing 1 each)", sum)
	}
}
