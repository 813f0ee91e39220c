package workflow

// Trigger is an event that moves a generation request between states
type Trigger string

const (
	TriggerSubmit   Trigger = "SUBMIT"
	TriggerReject   Trigger = "REJECT"
	TriggerAccept   Trigger = "ACCEPT"
	TriggerFail     Trigger = "FAIL"
	TriggerRender   Trigger = "RENDER"
	TriggerPreview  Trigger = "PREVIEW"
	TriggerFinalize Trigger = "FINALIZE"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
