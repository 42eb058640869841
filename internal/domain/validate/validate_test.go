package validate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/redraw/internal/domain/apptype"
	"github.com/felixgeelhaar/redraw/internal/domain/state"
	"github.com/felixgeelhaar/redraw/internal/ports"
	"github.com/felixgeelhaar/redraw/internal/testutil"
)

func TestValidator_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		build func() *state.State
		codes []string
	}{
		{
			name:  "valid network",
			build: testutil.NetworkState,
		},
		{
			name:  "no type",
			build: func() *state.State { return state.New(10, 10) },
			codes: []string{CodeTypeUnknown},
		},
		{
			name:  "unknown type",
			build: func() *state.State { return testutil.NewStateBuilder().WithType("pie").Build() },
			codes: []string{CodeTypeUnknown},
		},
		{
			name: "network without edges or id",
			build: func() *state.State {
				return testutil.NewStateBuilder().WithType("network").Build()
			},
			codes: []string{CodeEdgesMissing, CodeNodesMissing, CodeIDMissing},
		},
		{
			name: "scatter with url counts as data",
			build: func() *state.State {
				return testutil.NewStateBuilder().WithType("scatter").WithID("id").
					WithURL(state.ChannelData, "data.json").Build()
			},
		},
		{
			name: "keys not in data",
			build: func() *state.State {
				s := testutil.NewStateBuilder().WithType("scatter").WithID("name").WithTime("year").
					WithData(state.Record{"id": "a"}).Build()
				s.Data.Keys = state.KeyIndex{"id": state.KeyString}
				s.SetColor("size")
				s.Color.Key = "size"
				return s
			},
			codes: []string{CodeIDMissing, CodeColorKeyUnknown, CodeTimeKeyUnknown},
		},
		{
			name: "colour key found in attrs",
			build: func() *state.State {
				s := testutil.NewStateBuilder().WithType("bar").WithID("id").
					WithData(state.Record{"id": "a"}).Build()
				s.Data.Keys = state.KeyIndex{"id": state.KeyString}
				s.Attrs.Keys = state.KeyIndex{"population": state.KeyNumber}
				s.SetColor("population")
				s.Color.Key = "population"
				return s
			},
		},
	}

	v := NewValidator(apptype.NewDefaultRegistry())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := tt.build()
			err := v.Validate(context.Background(), s)
			if len(tt.codes) == 0 {
				require.NoError(t, err)
				assert.Empty(t, s.Error.Message)
				return
			}

			var verr *Error
			require.True(t, errors.As(err, &verr))
			got := make([]string, 0, len(verr.Issues))
			for _, i := range verr.Issues {
				got = append(got, i.Code)
			}
			assert.Equal(t, tt.codes, got)
			assert.Equal(t, verr.Issues[0].Message, s.Error.Message)
		})
	}
}

func TestValidator_ClearsPreviousMessage(t *testing.T) {
	t.Parallel()

	s := testutil.NetworkState()
	s.Error.Message = "stale"
	require.NoError(t, NewValidator(apptype.NewDefaultRegistry()).Validate(context.Background(), s))
	assert.Empty(t, s.Error.Message)
}

func TestValidator_LogsIssues(t *testing.T) {
	t.Parallel()

	logger := testutil.NewRecordingLogger()
	v := NewValidator(apptype.NewDefaultRegistry()).WithLogger(logger)

	err := v.Validate(context.Background(), testutil.NewStateBuilder().WithType("bar").Build())
	require.Error(t, err)

	warnings := logger.Messages(ports.LevelWarn)
	assert.Len(t, warnings, 2)
	assert.Contains(t, err.Error(), "bar chart")
}

func TestError_Has(t *testing.T) {
	t.Parallel()

	err := &Error{Issues: []Issue{{Code: CodeDataMissing, Field: "data", Message: "missing"}}}
	assert.True(t, err.Has(CodeDataMissing))
	assert.False(t, err.Has(CodeIDMissing))
	assert.Equal(t, "data: missing", err.Error())
}
