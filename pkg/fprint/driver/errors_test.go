package driver

import "testing"

func TestErrorFormatting(t *testing.T) {
	e := Errorf(StatusDataInvalid, "truncated at byte %d", 12)
	if got, want := e.Error(), "invalid data: truncated at byte 12"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
	bare := &Error{Status: StatusBusy}
	if got, want := bare.Error(), "device busy"; got != want {
		t.Fatalf("bare Error() = %q, want %q", got, want)
	}
}

func TestRetryErrorFormatting(t *testing.T) {
	e := &RetryError{Reason: RetryTooShort}
	if got, want := e.Error(), "swipe was too short"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
	e = &RetryError{Reason: RetryGeneral, Message: "sensor glare"}
	if got, want := e.Error(), "scan did not succeed: sensor glare"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestFingerNamesRoundTrip(t *testing.T) {
	for f := FingerUnknown; f <= FingerRightLittle; f++ {
		if got := ParseFinger(f.String()); got != f {
			t.Errorf("ParseFinger(%q) = %v, want %v", f.String(), got, f)
		}
	}
	if got := ParseFinger("sixth finger"); got != FingerUnknown {
		t.Errorf("ParseFinger of unknown name = %v, want FingerUnknown", got)
	}
}

func TestFeatureHas(t *testing.T) {
	f := FeatureCapture | FeatureVerify
	if !f.Has(FeatureCapture) || !f.Has(FeatureVerify) {
		t.Fatal("set bits not reported")
	}
	if f.Has(FeatureCapture | FeatureIdentify) {
		t.Fatal("Has must require all queried bits")
	}
}
