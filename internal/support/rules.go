package support

// Support services referenced by the recommendations. All are Australian
// national services.
var (
	ResourceEmergency = Resource{
		Name:        "Emergency Services",
		Phone:       "000",
		Description: "Police, fire and ambulance for situations involving immediate danger.",
	}
	ResourceScamwatch = Resource{
		Name:        "Scamwatch",
		Phone:       "1300 795 995",
		URL:         "https://www.scamwatch.gov.au",
		Description: "The ACCC's scam reporting and awareness service.",
	}
	ResourceACSC = Resource{
		Name:        "Australian Cyber Security Centre",
		Phone:       "1300 292 371",
		URL:         "https://www.cyber.gov.au",
		Description: "Government cyber security guidance and incident support.",
	}
	ResourceIDCARE = Resource{
		Name:        "IDCARE",
		Phone:       "1800 595 160",
		URL:         "https://www.idcare.org",
		Email:       "contact@idcare.org",
		Description: "Identity and cyber support counselling service.",
	}
	ResourceReportCyber = Resource{
		Name:        "ReportCyber",
		URL:         "https://www.reportcyber.gov.au",
		Description: "Online reporting portal for cybercrime.",
	}
	ResourceBank = Resource{
		Name:        "Your bank",
		Description: "The fraud line printed on the back of your card.",
	}
)

func always(map[string]string) bool { return true }

func answered(id, value string) func(map[string]string) bool {
	return func(answers map[string]string) bool {
		return answers[id] == value
	}
}

var defaultQuestions = []Question{
	{
		ID:     "situation",
		Prompt: "What best describes your situation?",
		Options: []Option{
			{Value: "scammed", Label: "I think I have been scammed"},
			{Value: "suspicious", Label: "I received something suspicious"},
			{Value: "prevention", Label: "I want to protect myself from scams"},
		},
	},
	{
		ID:        "ongoing",
		Prompt:    "Is the situation still unfolding, or is anyone in immediate danger?",
		Options:   yesNo,
		Condition: answered("situation", "scammed"),
	},
	{
		ID:        "money",
		Prompt:    "Did you send money or share banking details?",
		Options:   yesNo,
		Condition: answered("situation", "scammed"),
	},
	{
		ID:        "identity",
		Prompt:    "Did you share identity documents such as a passport or licence?",
		Options:   yesNo,
		Condition: answered("situation", "scammed"),
	},
	{
		ID:        "report",
		Prompt:    "Would you like to report what you received?",
		Options:   yesNo,
		Condition: answered("situation", "suspicious"),
	},
}

var yesNo = []Option{
	{Value: "yes", Label: "Yes"},
	{Value: "no", Label: "No"},
}

func staticRec(priority Priority, resource Resource, advice string, details ...string) func(map[string]string) Recommendation {
	return func(map[string]string) Recommendation {
		return Recommendation{Priority: priority, Resource: resource, Advice: advice, Details: details}
	}
}

var defaultRules = []rule{
	{
		applies: answered("ongoing", "yes"),
		build: staticRec(PriorityUrgent, ResourceEmergency,
			"Call 000 now if you or anyone else is in immediate danger.",
			"Move somewhere safe before making the call.",
			"Keep messages and call records; police will ask for them."),
	},
	{
		applies: answered("money", "yes"),
		build: staticRec(PriorityHigh, ResourceBank,
			"Call your bank straight away to freeze transfers and dispute payments.",
			"Call the fraud line printed on the back of your card.",
			"Ask the bank to freeze transfers and dispute recent payments.",
			"Change your online banking password once the account is secured."),
	},
	{
		applies: answered("identity", "yes"),
		build: staticRec(PriorityHigh, ResourceIDCARE,
			"IDCARE can help you respond to identity document exposure.",
			"Call 1800 595 160 or email contact@idcare.org for a response plan.",
			"List exactly which documents and details were shared.",
			"Watch for accounts or credit applications you did not open."),
	},
	{
		applies: answered("situation", "scammed"),
		build: staticRec(PriorityMedium, ResourceReportCyber,
			"Report the incident so it can be investigated and linked to other cases.",
			"Gather the messages, addresses and transaction records involved.",
			"Lodge the report at reportcyber.gov.au and keep the reference number."),
	},
	{
		applies: answered("report", "yes"),
		build: staticRec(PriorityMedium, ResourceScamwatch,
			"Reporting to Scamwatch helps warn others about the same scam.",
			"Do not reply to or click anything in the message.",
			"Report it at scamwatch.gov.au, then delete it."),
	},
	{
		applies: always,
		build: staticRec(PriorityLow, ResourceACSC,
			"The ACSC publishes practical steps for protecting your accounts and devices."),
	},
}
