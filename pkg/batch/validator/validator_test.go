package validator_test

import (
	"testing"

	"github.com/jihwankim/rfc/pkg/batch"
	"github.com/jihwankim/rfc/pkg/batch/validator"
)

func validJob() *batch.Job {
	return &batch.Job{
		APIVersion: "rfc.io/v1",
		Kind:       "BatchJob",
		Metadata:   batch.Metadata{Name: "nightly-sweep"},
		Spec: batch.JobSpec{
			Sources: []batch.Source{{Path: "a.csv"}},
		},
	}
}

func TestValidateAcceptsWellFormedJob(t *testing.T) {
	v := validator.New()
	if err := v.Validate(validJob()); err != nil {
		t.Fatalf("Validate: %v\n%s", err, v.GetReport())
	}
	if v.HasErrors() {
		t.Fatalf("unexpected errors: %v", v.Errors)
	}
}

func TestValidateRejectsMissingName(t *testing.T) {
	v := validator.New()
	job := validJob()
	job.Metadata.Name = ""
	if err := v.Validate(job); err == nil {
		t.Fatal("expected error for missing metadata.name")
	}
}

func TestValidateRejectsBadNameFormat(t *testing.T) {
	v := validator.New()
	job := validJob()
	job.Metadata.Name = "Not_Valid!"
	if err := v.Validate(job); err == nil {
		t.Fatal("expected error for invalid metadata.name format")
	}
}

func TestValidateWarnsOnUnexpectedAPIVersion(t *testing.T) {
	v := validator.New()
	job := validJob()
	job.APIVersion = "rfc.io/v2"
	if err := v.Validate(job); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !v.HasWarnings() {
		t.Fatal("expected a warning for an unexpected apiVersion")
	}
}

func TestValidateRejectsDuplicateAlias(t *testing.T) {
	v := validator.New()
	job := validJob()
	job.Spec.Sources = []batch.Source{
		{Path: "a.csv", Alias: "x"},
		{Path: "b.csv", Alias: "x"},
	}
	if err := v.Validate(job); err == nil {
		t.Fatal("expected error for duplicate alias")
	}
}

func TestValidateRejectsInvalidResidualMethod(t *testing.T) {
	v := validator.New()
	job := validJob()
	job.Spec.Overrides.ResidualMethod = "not_a_method"
	if err := v.Validate(job); err == nil {
		t.Fatal("expected error for invalid residual_method")
	}
}

func TestValidateRejectsNegativeHysteresis(t *testing.T) {
	v := validator.New()
	job := validJob()
	job.Spec.Overrides.Hysteresis = -1
	if err := v.Validate(job); err == nil {
		t.Fatal("expected error for negative hysteresis")
	}
}

func TestValidateWarnsOnHCMAndASTMTogether(t *testing.T) {
	v := validator.New()
	job := validJob()
	job.Spec.Overrides.UseHCM = true
	job.Spec.Overrides.UseASTM = true
	if err := v.Validate(job); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !v.HasWarnings() {
		t.Fatal("expected a warning when both use_hcm and use_astm are set")
	}
}

func TestValidateRejectsBadExecutionMode(t *testing.T) {
	v := validator.New()
	job := validJob()
	job.Spec.ExecutionMode = "turbo"
	if err := v.Validate(job); err == nil {
		t.Fatal("expected error for invalid execution_mode")
	}
}

func TestGetReportWhenClean(t *testing.T) {
	v := validator.New()
	if err := v.Validate(validJob()); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	report := v.GetReport()
	if report == "" {
		t.Fatal("expected a non-empty report even when clean")
	}
}
