package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleaner_Clean(t *testing.T) {
	t.Parallel()

	cleaner := NewCleaner()

	tests := []struct {
		name   string
		in     string
		want   string
		wantOK bool
	}{
		{
			name:   "normal paragraph",
			in:     "O governo anunciou nesta quinta-feira um novo pacote de medidas.",
			want:   "O governo anunciou nesta quinta-feira um novo pacote de medidas.",
			wantOK: true,
		},
		{
			name:   "whitespace collapsed",
			in:     "  O governo\n\tanunciou   novas medidas para o setor elétrico.  ",
			want:   "O governo anunciou novas medidas para o setor elétrico.",
			wantOK: true,
		},
		{name: "empty", in: "   ", wantOK: false},
		{name: "too short", in: "Muito curto.", wantOK: false},
		{
			name:   "call to action phrase",
			in:     "Para mais detalhes sobre o assunto, leia mais em nossa cobertura completa.",
			wantOK: false,
		},
		{
			name:   "ad marker",
			in:     "Publicidade: aproveite as melhores condições do mercado hoje mesmo.",
			wantOK: false,
		},
		{
			name:   "bare url",
			in:     "Acompanhe a entrevista completa em https://example.com/entrevista-completa",
			wantOK: false,
		},
		{
			name:   "imperative prefix",
			in:     "Veja como foi a votação completa no plenário da câmara municipal.",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := cleaner.Clean(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestCleaner_Deterministic(t *testing.T) {
	t.Parallel()

	cleaner := NewCleaner()
	in := "O congresso aprovou o texto-base do projeto em votação simbólica."

	first, ok1 := cleaner.Clean(in)
	second, ok2 := cleaner.Clean(in)

	assert.Equal(t, ok1, ok2)
	assert.Equal(t, first, second)
}

func TestSplitBlocks(t *testing.T) {
	t.Parallel()

	blocks := SplitBlocks("primeiro parágrafo\n\nsegundo parágrafo\n\n\nterceiro")
	assert.Len(t, blocks, 3)
}
