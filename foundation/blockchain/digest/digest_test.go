package digest_test

import (
	"testing"

	"github.com/civicledger/civicledger/foundation/blockchain/digest"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestHash(t *testing.T) {
	type table struct {
		name  string
		parts []string
		hash  string
	}

	tt := []table{
		{
			name:  "empty",
			parts: nil,
			hash:  "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name:  "abc",
			parts: []string{"abc"},
			hash:  "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		},
		{
			name:  "concat",
			parts: []string{"a", "b", "c"},
			hash:  "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		},
	}

	t.Log("Given the need to hash concatenated values.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen handling %s.", testID, tst.name)
				{
					got := digest.Hash(tst.parts...)
					if got != tst.hash {
						t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, got)
						t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, tst.hash)
						t.Fatalf("\t%s\tTest %d:\tShould get back the right hash.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get back the right hash.", success, testID)

					if !digest.IsHash(got) {
						t.Fatalf("\t%s\tTest %d:\tShould recognize the hash shape.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould recognize the hash shape.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func TestIsHash(t *testing.T) {
	t.Log("Given the need to recognize hash values.")
	{
		if !digest.IsHash(digest.ZeroHash) {
			t.Fatalf("\t%s\tShould accept the zero hash.", failed)
		}
		t.Logf("\t%s\tShould accept the zero hash.", success)

		bad := []string{
			"",
			"0x0000000000000000000000000000000000000000000000000000000000000000",
			"E3B0C44298FC1C149AFBF4C8996FB92427AE41E4649B934CA495991B7852B855",
			"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b85",
		}
		for _, s := range bad {
			if digest.IsHash(s) {
				t.Fatalf("\t%s\tShould reject %q.", failed, s)
			}
			t.Logf("\t%s\tShould reject %q.", success, s)
		}
	}
}
