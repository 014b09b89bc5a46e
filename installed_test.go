package tpt

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestInstalledRecordRoundTripsSandboxFields(t *testing.T) {
	record := InstalledRecord{
		Version: "1.2.3",
		Source:  SourceTPT,
		InstallationDetails: InstallationDetails{
			Handler:     HandlerDeb,
			PackageName: "firefox",
			Sandbox:     true,
			SandboxName: "tpt-sandbox-firefox",
		},
	}

	b, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got InstalledRecord
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(got, record) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, record)
	}
}

func TestInstallationDetailsOmitsEmptyFields(t *testing.T) {
	b, err := json.Marshal(InstallationDetails{Handler: HandlerScript})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, present := m["sandbox"]; present {
		t.Fatal("sandbox field should be omitted when false")
	}
	if _, present := m["sandbox_name"]; present {
		t.Fatal("sandbox_name field should be omitted when empty")
	}
}
