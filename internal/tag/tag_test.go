package tag

import "testing"

func TestParseRoundTrip(t *testing.T) {
	in := "NOUN,anim,masc,sing,nomn"
	tg := Parse(in)

	if !tg.Has(CategoryPOS, NOUN) {
		t.Fatal("expected NOUN bit set")
	}
	if !tg.Has(CategoryCase, Nomn) {
		t.Fatal("expected nomn bit set")
	}
	if !tg.Has(CategoryGender, Masc) {
		t.Fatal("expected masc bit set")
	}
	if !tg.Has(CategoryNumber, Sing) {
		t.Fatal("expected sing bit set")
	}
	if !tg.Has(CategoryAnimacy, Anim) {
		t.Fatal("expected anim bit set")
	}
}

func TestSubsumes(t *testing.T) {
	target := Parse("plur,datv")
	full := Parse("NOUN,anim,masc,plur,datv")

	if !target.Subsumes(full) {
		t.Fatal("partial target tag should be subsumed by a fully specified candidate")
	}

	other := Parse("NOUN,anim,masc,plur,nomn")
	if target.Subsumes(other) {
		t.Fatal("target requiring datv must not be subsumed by a nomn candidate")
	}
}

func TestUnionIsCommutative(t *testing.T) {
	a := Parse("NOUN,masc")
	b := Parse("sing,nomn")

	if a.Union(b) != b.Union(a) {
		t.Fatal("Union should be commutative")
	}
}

func TestEqualityIsBitExact(t *testing.T) {
	a := Parse("NOUN,masc,sing,nomn")
	b := Parse("sing,NOUN,nomn,masc")

	if !a.Equal(b) {
		t.Fatal("tags built from the same grammemes in different order must be equal")
	}
}

func TestStringRoundTrips(t *testing.T) {
	orig := "NOUN,anim,masc,sing,nomn"
	got := Parse(orig).String()
	if Parse(got) != Parse(orig) {
		t.Fatalf("String() output %q does not re-parse to the same tag", got)
	}
}

func TestUnknownGrammemeIgnored(t *testing.T) {
	tg := Parse("NOUN,bogus-grammeme,masc")
	if !tg.Has(CategoryPOS, NOUN) || !tg.Has(CategoryGender, Masc) {
		t.Fatal("known grammemes around an unknown token should still be parsed")
	}
}
