package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wayline/suppliersync/internal/llm"
	"go.uber.org/zap"
)

// fakeClient returns a canned completion or error
type fakeClient struct {
	text string
	err  error

	lastSystem string
	lastUser   string
}

func (f *fakeClient) ChatJSON(_ context.Context, system, user string) (*llm.Completion, error) {
	f.lastSystem = system
	f.lastUser = user
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Completion{
		Text:      f.text,
		LatencyMs: 42,
		Usage:     llm.Usage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150},
	}, nil
}

func newTestRunner(client llm.Client) *Runner {
	return NewRunner(client, zap.NewNop())
}

func TestProposeSupplierUpdates_NamedKey(t *testing.T) {
	client := &fakeClient{text: `{"updates": [
		{"sku": "SOF-001", "field": "wholesale_price", "new_value": 540.0, "reason": "raw material cost"},
		{"sku": "TBL-002", "field": "name", "new_value": "Madison Extendable Dining Table XL"}
	]}`}

	updates, tel, err := newTestRunner(client).ProposeSupplierUpdates(context.Background(), `{"catalog": []}`)

	require.NoError(t, err)
	require.Len(t, updates, 2)
	assert.Equal(t, "SOF-001", updates[0].SKU)
	v, ok := updates[0].NumericValue()
	require.True(t, ok)
	assert.Equal(t, 540.0, v)

	assert.Equal(t, "supplier", tel.Agent)
	assert.Equal(t, "propose_updates", tel.Step)
	assert.Equal(t, 100, tel.TokensIn)
	assert.Equal(t, 50, tel.TokensOut)
	assert.Equal(t, int64(42), tel.LatencyMs)
	assert.Zero(t, tel.CostUSD)
	assert.Contains(t, tel.Prompt, `{"catalog": []}`)
	assert.Equal(t, client.text, tel.Response)
}

func TestProposeSupplierUpdates_DropsInvalidRecords(t *testing.T) {
	client := &fakeClient{text: `{"updates": [
		{"sku": "A", "field": "wholesale_price", "new_value": 12.5},
		{"sku": "B", "field": "is_active", "new_value": false},
		{"field": "name", "new_value": "no sku"},
		{"sku": "C", "field": "wholesale_price", "new_value": "not-a-number"},
		{"sku": "D", "field": "wholesale_price", "new_value": "19.99"},
		{"sku": "E", "field": "category", "new_value": 7}
	]}`}

	updates, _, err := newTestRunner(client).ProposeSupplierUpdates(context.Background(), "{}")

	require.NoError(t, err)
	// A is valid; D's numeric string is accepted; the rest are dropped
	require.Len(t, updates, 2)
	assert.Equal(t, "A", updates[0].SKU)
	assert.Equal(t, "D", updates[1].SKU)
}

func TestProposePriceChanges_BareArray(t *testing.T) {
	client := &fakeClient{text: `[
		{"sku": "SOF-001", "new_price": 949.0, "reason": "demand up"},
		{"sku": "TBL-002", "new_price": -1.0},
		{"new_price": 100.0}
	]`}

	proposals, tel, err := newTestRunner(client).ProposePriceChanges(context.Background(), "{}")

	require.NoError(t, err)
	require.Len(t, proposals, 1)
	assert.Equal(t, "SOF-001", proposals[0].SKU)
	assert.Equal(t, 949.0, proposals[0].NewPrice)
	assert.Equal(t, "buyer", tel.Agent)
	assert.Equal(t, "propose_price_changes", tel.Step)
}

func TestProposePriceChanges_GarbageYieldsEmptyList(t *testing.T) {
	for _, text := range []string{
		"not json at all",
		`{"prices": "not-a-list"}`,
		`{"something_else": []}`,
		`123`,
	} {
		client := &fakeClient{text: text}
		proposals, tel, err := newTestRunner(client).ProposePriceChanges(context.Background(), "{}")

		require.NoError(t, err, "input: %s", text)
		assert.Empty(t, proposals, "input: %s", text)
		assert.Equal(t, text, tel.Response)
	}
}

func TestProposeCXActions(t *testing.T) {
	client := &fakeClient{text: `{"actions": [
		{"sku": "RUG-006", "action": "adjust_description", "details": "clarify machine washable"},
		{"sku": "RUG-006", "action": "flag_for_qa"}
	]}`}

	actions, tel, err := newTestRunner(client).ProposeCXActions(context.Background(), "{}")

	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, "adjust_description", actions[0].Action)
	assert.Equal(t, "cx", tel.Agent)
	assert.Equal(t, "propose_actions", tel.Step)
}

func TestAdapters_PropagateCallErrors(t *testing.T) {
	callErr := llm.NewCallError(llm.KindTimeout, "deadline exceeded", 0, false, nil)
	client := &fakeClient{err: callErr}
	runner := newTestRunner(client)
	ctx := context.Background()

	_, _, err := runner.ProposeSupplierUpdates(ctx, "{}")
	require.Error(t, err)
	var got *llm.CallError
	assert.True(t, errors.As(err, &got))

	_, _, err = runner.ProposePriceChanges(ctx, "{}")
	require.Error(t, err)

	_, _, err = runner.ProposeCXActions(ctx, "{}")
	require.Error(t, err)
}
