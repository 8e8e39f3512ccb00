package handlers

import (
	"github.com/signalhound-dev/signalhound/internal/automation"
	"github.com/signalhound-dev/signalhound/internal/crm"
	"github.com/signalhound-dev/signalhound/internal/emailgen"
	"github.com/signalhound-dev/signalhound/internal/notifications"
)

// Dependencies wires the automation core into the HTTP layer once at startup.
type Dependencies struct {
	Executor *automation.Executor
	Gate     *notifications.Gate
	EmailGen *emailgen.Generator
	CRM      crm.Config
}

var (
	automationExec *automation.Executor
	notifyGate     *notifications.Gate
	emailGenerator *emailgen.Generator
	crmConfig      crm.Config
)

func Configure(deps Dependencies) {
	automationExec = deps.Executor
	notifyGate = deps.Gate
	emailGenerator = deps.EmailGen
	crmConfig = deps.CRM
}
