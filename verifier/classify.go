package verifier

import "github.com/Motimate/extant-email/models"

// Classify turns probe and heuristic signals into a verdict. Rules are
// evaluated in order and the first match wins.
func Classify(misc models.MiscSignals, smtp *models.SmtpSignals, probeErr error) models.Reachable {
	if probeErr != nil || smtp == nil {
		return models.ReachableUnknown
	}

	if misc.IsDisposable || misc.IsRoleAccount || smtp.IsCatchAll || smtp.HasFullInbox {
		return models.ReachableRisky
	}

	if smtp.IsBanned {
		return models.ReachableBanned
	}

	if !smtp.IsDeliverable || !smtp.CanConnectSMTP || smtp.IsDisabled {
		return models.ReachableInvalid
	}

	return models.ReachableSafe
}
