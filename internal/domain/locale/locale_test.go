package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tag     string
		want    string
		wantErr bool
	}{
		{"en_US", "en_US", false},
		{"en-US", "en_US", false},
		{"de_DE", "de_DE", false},
		{" es_ES ", "es_ES", false},
		{"fr_FR", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			t.Parallel()

			b, err := Lookup(tt.tag)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownLocale)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, b.Tag)
		})
	}
}

func TestAvailable(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"de_DE", "en_US", "es_ES"}, Available())
	assert.Equal(t, DefaultTag, Default().Tag)
}

func TestBundle_Messages(t *testing.T) {
	t.Parallel()

	b := Default()
	assert.Equal(t, "Loading...", b.Message.Loading)
	assert.Equal(t, "Initializing Network", b.Format(b.Message.Initializing, b.AppName("network")))
	assert.Equal(t, "Scatter Plot", b.AppName("scatter"))
	assert.Equal(t, "pie", b.AppName("pie"), "unknown types keep their name")
	assert.Equal(t, "bar chart", b.Label("bar"))
	assert.Equal(t, "en-US", b.Language().String())

	de, err := Lookup("de_DE")
	require.NoError(t, err)
	assert.Equal(t, "Initialisierung Balkendiagramm", de.Format(de.Message.Initializing, de.AppName("bar")))
	assert.Equal(t, "netzwerk", de.Label("network"))
}

func TestBundle_Format(t *testing.T) {
	t.Parallel()

	b := Default()
	assert.Equal(t, "plain", b.Format("plain"))
	assert.Equal(t, "b then a", b.Format("{1} then {0}", "a", "b"))
	assert.Equal(t, "{0}", b.Format("{0}"))
}

func TestParse(t *testing.T) {
	t.Parallel()

	b, err := Parse([]byte("tag = \"fr_FR\"\n[visualization]\nbar = \"Histogramme\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "Histogramme", b.AppName("bar"))
	assert.Equal(t, "fr-FR", b.Language().String())

	_, err = Parse([]byte("[message]\nloading = \"x\"\n"))
	require.Error(t, err)

	_, err = Parse([]byte("tag = "))
	require.Error(t, err)
}
