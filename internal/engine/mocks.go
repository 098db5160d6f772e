package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/solsift/solsift/internal/birdeye"
	"github.com/solsift/solsift/internal/model"
)

// MockOracle is a test implementation of the Oracle interface. Responses are
// dispatched by matching the prompt against registered handlers, falling
// back to a scripted queue.
type MockOracle struct {
	handlers  map[string]func(payload string) (string, error)
	responses []string
	calls     []MockOracleCall
	err       error
	mu        sync.Mutex
}

// MockOracleCall records one completion request.
type MockOracleCall struct {
	Prompt  string
	Payload string
}

// NewMockOracle creates a new mock oracle.
func NewMockOracle() *MockOracle {
	return &MockOracle{
		handlers: make(map[string]func(payload string) (string, error)),
	}
}

// Handle registers a handler invoked when the prompt matches exactly.
func (m *MockOracle) Handle(prompt string, fn func(payload string) (string, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[prompt] = fn
}

// Queue appends a scripted response used when no handler matches.
func (m *MockOracle) Queue(responses ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, responses...)
}

// Fail makes every completion return err.
func (m *MockOracle) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns a copy of the recorded calls.
func (m *MockOracle) Calls() []MockOracleCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockOracleCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// Complete implements the Oracle interface.
func (m *MockOracle) Complete(_ context.Context, prompt, payload string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, MockOracleCall{Prompt: prompt, Payload: payload})

	if m.err != nil {
		return "", m.err
	}
	if fn, ok := m.handlers[prompt]; ok {
		return fn(payload)
	}
	if len(m.responses) == 0 {
		return "", fmt.Errorf("mock oracle has no response queued")
	}
	response := m.responses[0]
	m.responses = m.responses[1:]
	return response, nil
}

// MockMarketData is a test implementation of the MarketData interface backed
// by fixed pages and metadata.
type MockMarketData struct {
	Pages       [][]birdeye.TokenRecord
	Metadata    map[string]birdeye.TokenMetadata
	ListErr     error
	MetadataErr error
	ListCalls   int
	mu          sync.Mutex
}

// ListTokens returns the page at offset/pageSize, or an empty page past the end.
func (m *MockMarketData) ListTokens(_ context.Context, _ model.FilterParameterSet, offset, limit int) ([]birdeye.TokenRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListCalls++
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	page := offset / limit
	if page >= len(m.Pages) {
		return nil, nil
	}
	return m.Pages[page], nil
}

// TokenMetadata returns the configured metadata for the requested addresses.
func (m *MockMarketData) TokenMetadata(_ context.Context, addresses []string) (map[string]birdeye.TokenMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.MetadataErr != nil {
		return nil, m.MetadataErr
	}
	out := make(map[string]birdeye.TokenMetadata)
	for _, address := range addresses {
		if meta, ok := m.Metadata[address]; ok {
			out[address] = meta
		}
	}
	return out, nil
}

// MockOwnershipChecker is a test implementation of the OwnershipChecker
// interface with per-address evidence.
type MockOwnershipChecker struct {
	EvidenceByAddress map[string][]model.OwnershipEvidence
	Err               error
}

// Evidence returns the configured evidence for the address.
func (m *MockOwnershipChecker) Evidence(_ context.Context, tokenAddress string) ([]model.OwnershipEvidence, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.EvidenceByAddress[tokenAddress], nil
}

// MockStorage is an in-memory test implementation of the storage contract.
type MockStorage struct {
	Snapshots    []model.TokenCandidate
	Results      map[string]map[string]model.TokenCandidate // run_id -> address -> candidate
	Runs         []*model.PipelineRun
	Wallets      []model.KOLWallet
	UpsertErr    error
	UpsertErrFor map[string]error // per-address upsert failures
	SnapshotErr  error
	mu           sync.Mutex
}

// NewMockStorage creates an empty in-memory store.
func NewMockStorage() *MockStorage {
	return &MockStorage{
		Results: make(map[string]map[string]model.TokenCandidate),
	}
}

// SaveSnapshots implements service.Storage.
func (m *MockStorage) SaveSnapshots(_ context.Context, candidates []model.TokenCandidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SnapshotErr != nil {
		return m.SnapshotErr
	}
	m.Snapshots = append(m.Snapshots, candidates...)
	return nil
}

// UpsertResult implements service.Storage.
func (m *MockStorage) UpsertResult(_ context.Context, runID string, candidate *model.TokenCandidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	if err, ok := m.UpsertErrFor[candidate.Address]; ok {
		return err
	}
	if m.Results[runID] == nil {
		m.Results[runID] = make(map[string]model.TokenCandidate)
	}
	m.Results[runID][candidate.Address] = *candidate
	return nil
}

// GetResultsByRun implements service.Storage.
func (m *MockStorage) GetResultsByRun(_ context.Context, runID string) ([]model.TokenCandidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.TokenCandidate, 0, len(m.Results[runID]))
	for _, candidate := range m.Results[runID] {
		out = append(out, candidate)
	}
	return out, nil
}

// SaveRun implements service.Storage.
func (m *MockStorage) SaveRun(_ context.Context, run *model.PipelineRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Runs = append(m.Runs, run)
	return nil
}

// GetLatestRunID implements service.Storage.
func (m *MockStorage) GetLatestRunID(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Runs) == 0 {
		return "", fmt.Errorf("no runs recorded")
	}
	return m.Runs[len(m.Runs)-1].RunID, nil
}

// SaveKOLWallet implements service.Storage.
func (m *MockStorage) SaveKOLWallet(_ context.Context, wallet *model.KOLWallet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Wallets = append(m.Wallets, *wallet)
	return nil
}

// GetActiveKOLWallets implements service.Storage.
func (m *MockStorage) GetActiveKOLWallets(_ context.Context) ([]model.KOLWallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.KOLWallet
	for _, wallet := range m.Wallets {
		if wallet.Active {
			out = append(out, wallet)
		}
	}
	return out, nil
}

// GetAllKOLWallets implements service.Storage.
func (m *MockStorage) GetAllKOLWallets(_ context.Context) ([]model.KOLWallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.KOLWallet, len(m.Wallets))
	copy(out, m.Wallets)
	return out, nil
}

// Migrate implements service.Storage.
func (m *MockStorage) Migrate(_ context.Context) error { return nil }

// Close implements service.Storage.
func (m *MockStorage) Close() error { return nil }
