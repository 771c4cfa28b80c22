package streetindex

import (
	"testing"

	"github.com/watchmapper/tilegps/internal/tile"
)

func sampleStreets() map[string][]tile.CWayID {
	return map[string][]tile.CWayID{
		"Rue de la Paix":   {{TileNumber: 1, LocalWayID: 2}, {TileNumber: 1, LocalWayID: 3}},
		"Avenue des Champs": {{TileNumber: 2, LocalWayID: 0}},
		"Boulevard Saint-Michel": {{TileNumber: 3, LocalWayID: 5}, {TileNumber: 4, LocalWayID: 1}},
		"Rue Pasteur":      {{TileNumber: 1, LocalWayID: 9}},
		"Impasse du Moulin": {{TileNumber: 0, LocalWayID: 0}},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	streets := sampleStreets()
	encoded := Encode(streets)

	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(decoded) != len(streets) {
		t.Fatalf("expected %d streets, got %d", len(streets), len(decoded))
	}
	for name, ways := range streets {
		folded := FoldAccents(name)
		got, ok := decoded[folded]
		if !ok {
			t.Fatalf("missing street %q in decoded result", folded)
		}
		if len(got) != len(ways) {
			t.Fatalf("way count mismatch for %q: got %d want %d", folded, len(got), len(ways))
		}
		for i := range ways {
			if got[i] != ways[i] {
				t.Fatalf("way %d mismatch for %q: got %v want %v", i, folded, got[i], ways[i])
			}
		}
	}
}

func TestBlockForFindsCorrectBlock(t *testing.T) {
	t.Parallel()

	streets := sampleStreets()
	encoded := Encode(streets)

	idx, err := ParseIndex(encoded)
	if err != nil {
		t.Fatalf("parse index: %v", err)
	}

	for name := range streets {
		folded := FoldAccents(name)
		b := idx.BlockFor(folded)
		block, err := idx.DecodeBlock(b)
		if err != nil {
			t.Fatalf("decode block %d: %v", b, err)
		}
		if _, ok := block[folded]; !ok {
			t.Fatalf("street %q not found in block %d chosen by BlockFor", folded, b)
		}
	}
}

func TestFoldAccentsStripsDiacritics(t *testing.T) {
	t.Parallel()

	in := "Rue du Général Leclerc"
	want := "Rue du General Leclerc"
	if got := FoldAccents(in); got != want {
		t.Fatalf("FoldAccents(%q) = %q, want %q", in, got, want)
	}
}

func TestHeatshrinkRoundTripOnRepetitiveData(t *testing.T) {
	t.Parallel()

	data := []byte("abcabcabcabcabcabcxyzxyzxyzabcabcabc")
	encoded := heatshrinkEncode(data, windowBits, lookaheadBits)
	decoded, err := heatshrinkDecode(encoded, windowBits, lookaheadBits)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(decoded) != string(data) {
		t.Fatalf("round trip mismatch: got %q want %q", decoded, data)
	}
}

func TestHeatshrinkRoundTripOnRandomish(t *testing.T) {
	t.Parallel()

	data := []byte("The quick brown fox jumps over the lazy dog 0123456789 !@#$%^&*()")
	encoded := heatshrinkEncode(data, windowBits, lookaheadBits)
	decoded, err := heatshrinkDecode(encoded, windowBits, lookaheadBits)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(decoded) != string(data) {
		t.Fatalf("round trip mismatch: got %q want %q", decoded, data)
	}
}
