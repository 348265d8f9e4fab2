package domain

import "testing"

func TestStatusReached(t *testing.T) {
	tests := []struct {
		status, target Status
		want           bool
	}{
		{StatusInit, StatusInit, true},
		{StatusInit, StatusFA2Deployed, false},
		{StatusFA2Deployed, StatusFA2Deployed, true},
		{StatusQuorumDeployed, StatusFA2Deployed, true},
		{StatusAdminConfirmed, StatusInit, true},
		{StatusAdminConfirmed, StatusAdminConfirmed, true},
		{StatusMinterDeployed, StatusAdminHandoff, false},
		{Status("bogus"), StatusInit, false},
		{StatusInit, Status("bogus"), false},
	}
	for _, tt := range tests {
		if got := tt.status.Reached(tt.target); got != tt.want {
			t.Errorf("%s.Reached(%s) = %v, want %v", tt.status, tt.target, got, tt.want)
		}
	}
}

func TestStatusKnown(t *testing.T) {
	for _, s := range []Status{StatusInit, StatusFA2Deployed, StatusQuorumDeployed, StatusMinterDeployed, StatusAdminHandoff, StatusAdminConfirmed} {
		if !s.Known() {
			t.Errorf("%s not known", s)
		}
	}
	if Status("deployed").Known() {
		t.Error("arbitrary status counts as known")
	}
}

func TestResultComplete(t *testing.T) {
	r := DeploymentResult{FA2Address: "KT1a", QuorumAddress: "KT1b"}
	if r.Complete() {
		t.Error("two addresses count as complete")
	}
	r.MinterAddress = "KT1c"
	if !r.Complete() {
		t.Error("three addresses do not count as complete")
	}
}
