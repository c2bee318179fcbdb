package conversation

const (
	welcomeMessage = "Hi! I'm your Smart Career SG assistant. Tell me which career or skill you'd like to explore."

	conflictMessage          = "An analysis is already in progress. I'll let you know as soon as it finishes."
	remoteBusyMessage        = "An analysis is already running on the server. Please try again once it finishes."
	startFailedMessage       = "I couldn't start the analysis (%s). Please try again in a moment."
	completedMessage         = "Your analysis for %s is complete! Your personalised recommendations are ready."
	failedMessage            = "The analysis failed: %s. Please try again."
	timeoutMessage           = "The analysis is taking longer than expected, so I've stopped waiting. Please try again later."
	cancelledMessage         = "The analysis was cancelled."
	resultUnavailableMessage = "The analysis finished, but I couldn't retrieve the results. Please try downloading them again later."

	roleNotFoundMessage = "Sorry, we couldn't find information about that role."
	roleErrorMessage    = "Something went wrong while loading this role. Please try again."
)
