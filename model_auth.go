package accounts

import validation "github.com/go-ozzo/ozzo-validation"

// authMessages holds the authentication service model error messages.
var authMessages = map[string]string{
	"id_token":   "User is not authenticated.",
	"mode":       "Mode should be one of recoverEmail, resetPassword, or verifyEmail.",
	"email":      "Please enter a valid email.",
	"actionCode":  "Action code should be a non-empty string.",
	"continueUrl": "Continue URL should be a valid url.",
	"lang":        "Lang should be a valid BCP 47 language tag.",
	"query":       "Query required.",
}

func registerAuthSchemas(r *Registry) {
	r.register(ResourceAuthentication, OpCreate, &Schema{
		RequireQuery: true,
		QueryMessage: authMessages["query"],
		Query: []Field{
			StringField("id_token", authMessages["id_token"]).Require(),
		},
	})

	// Out-of-band user management actions arrive unauthenticated; the
	// action code itself is the credential.
	r.register(ResourceAuthentication, OpFind, &Schema{
		RequireQuery: true,
		QueryMessage: authMessages["query"],
		Query: []Field{
			StringField("mode", authMessages["mode"]).
				Require().
				WithRules(validation.In(
					string(ActionRecoverEmail),
					string(ActionResetPassword),
					string(ActionVerifyEmail),
				)),
			EmailField("email", authMessages["email"]),
			StringField("actionCode", authMessages["actionCode"]),
			URLField("continueUrl", authMessages["continueUrl"]),
			StringField("lang", authMessages["lang"]),
		},
	})

	r.register(ResourceAuthentication, OpRemove, &Schema{
		RequireQuery: true,
		QueryMessage: authMessages["query"],
		Query: []Field{
			StringField("id_token", authMessages["id_token"]).Require(),
		},
	})
}

func registerDocumentationSchemas(r *Registry) {
	r.register(ResourceDocumentation, OpFind, &Schema{})
}
