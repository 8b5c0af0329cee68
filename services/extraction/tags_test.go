package extraction

import "testing"

func TestParseTagged(t *testing.T) {
	reply := "Sure, here you go.\n  NAME: Jane\nemail: none\nNote: not a tag\nname: Other\nTIME: \"10:00\"\r\n"

	got := ParseTagged(reply)

	if v, ok := got.Get(TagName); !ok || v != "Jane" {
		t.Errorf("NAME = %q, %v; want first occurrence", v, ok)
	}
	if _, ok := got.Get(TagEmail); ok {
		t.Error("placeholder email should be absent")
	}
	if v, _ := got.Get(TagTime); v != "10:00" {
		t.Errorf("TIME = %q, want quotes stripped", v)
	}
	if want := "Sure, here you go.\nNote: not a tag"; got.Text != want {
		t.Errorf("Text = %q, want %q", got.Text, want)
	}
}

func TestParseTaggedNoTags(t *testing.T) {
	got := ParseTagged("I could not understand that.")
	if len(got.Values) != 0 {
		t.Errorf("expected no values, got %v", got.Values)
	}
	if got.Text != "I could not understand that." {
		t.Errorf("unexpected prose %q", got.Text)
	}
}

func TestTagForEveryCollectedField(t *testing.T) {
	fields := []Field{FieldIntent, FieldName, FieldEmail, FieldDate, FieldTime, FieldTitle, FieldDescription, FieldConfirmation}
	for _, f := range fields {
		if _, ok := TagFor(f); !ok {
			t.Errorf("no tag for field %q", f)
		}
	}
	if _, ok := TagFor(FieldNone); ok {
		t.Error("FieldNone should have no tag")
	}
}
