package domain

import "time"

// Status names how far a deployment has progressed.
type Status string

// Deployment statuses, in the order stages complete.
const (
	StatusInit           Status = "init"
	StatusFA2Deployed    Status = "fa2_deployed"
	StatusQuorumDeployed Status = "quorum_deployed"
	StatusMinterDeployed Status = "minter_deployed"
	StatusAdminHandoff   Status = "admin_handoff"
	StatusAdminConfirmed Status = "admin_confirmed"
)

var statusRank = map[Status]int{
	StatusInit:           0,
	StatusFA2Deployed:    1,
	StatusQuorumDeployed: 2,
	StatusMinterDeployed: 3,
	StatusAdminHandoff:   4,
	StatusAdminConfirmed: 5,
}

// Known reports whether s is one of the deployment statuses.
func (s Status) Known() bool {
	_, ok := statusRank[s]
	return ok
}

// Reached reports whether s is at or past target in the deployment
// sequence. Unknown statuses never reach anything.
func (s Status) Reached(target Status) bool {
	sr, ok := statusRank[s]
	tr, tok := statusRank[target]
	return ok && tok && sr >= tr
}

// DeploymentResult collects the addresses of the three contracts a
// finished deployment produces.
type DeploymentResult struct {
	FA2Address    string `json:"fa2_address"`
	QuorumAddress string `json:"quorum_address"`
	MinterAddress string `json:"minter_address"`
}

// Complete reports whether all three contracts exist.
func (r DeploymentResult) Complete() bool {
	return r.FA2Address != "" && r.QuorumAddress != "" && r.MinterAddress != ""
}

// DeploymentState is the persisted snapshot of a deployment. It is
// written after every completed stage so a failed run is inspectable
// and a re-run resumes from the stage that failed instead of starting
// over.
type DeploymentState struct {
	Status        Status            `json:"status"`
	Network       string            `json:"network"`
	FA2Address    string            `json:"fa2_address,omitempty"`
	QuorumAddress string            `json:"quorum_address,omitempty"`
	MinterAddress string            `json:"minter_address,omitempty"`
	Tokens        []TokenSpec       `json:"tokens,omitempty"`
	Signers       map[string]string `json:"signers,omitempty"`
	Threshold     int               `json:"threshold,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// Result extracts the addresses recorded so far.
func (s *DeploymentState) Result() DeploymentResult {
	return DeploymentResult{
		FA2Address:    s.FA2Address,
		QuorumAddress: s.QuorumAddress,
		MinterAddress: s.MinterAddress,
	}
}

// DeploymentRun is one journal entry for a deployment attempt. Status
// mirrors the state snapshot; FailureMsg is set when the run aborted.
type DeploymentRun struct {
	RunID         string    `json:"run_id"`
	Network       string    `json:"network"`
	Status        Status    `json:"status"`
	FA2Address    string    `json:"fa2_address,omitempty"`
	QuorumAddress string    `json:"quorum_address,omitempty"`
	MinterAddress string    `json:"minter_address,omitempty"`
	FailureMsg    string    `json:"failure_msg,omitempty"`
	StartedAt     time.Time `json:"started_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
