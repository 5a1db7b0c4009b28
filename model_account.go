package accounts

import validation "github.com/go-ozzo/ozzo-validation"

// accountMessages holds the account service model error messages. One
// message per field rule.
var accountMessages = map[string]string{
	"birthday":     "Birthday is required and should be in a valid ISO 8601 date format. Users must be at least 16 years old.",
	"business":     "Business property is an optional boolean value that defaults to false.",
	"data":         "Payload required.",
	"displayName":  "Display name should be between 1 and 50 characters.",
	"email":        "Please enter a valid email.",
	"id_token":     "User is not authenticated.",
	"page_results": "Max number of results should be between 1 and 1000 inclusive.",
	"page_token":   "Page token should be a valid UID.",
	"password":     "Passwords must be at least 6 characters.",
	"phoneNumber":  "Phone number should be in a valid E.164 format.",
	"photoURL":     "Please enter a valid photo url.",
	"premium":      "Premium property is an optional boolean value that defaults to false.",
	"query":        "Query required.",
	"username":     "Username should be between 1 and 30 characters.",
}

// authenticatedQuery is the recurring bare identity-token query shape.
func authenticatedQuery() []Field {
	return []Field{
		StringField("id_token", accountMessages["id_token"]).Require(),
	}
}

func registerAccountSchemas(r *Registry) {
	r.register(ResourceAccounts, OpCreate, &Schema{
		RequirePayload: true,
		PayloadMessage: accountMessages["data"],
		Payload: []Field{
			StringField("displayName", accountMessages["displayName"]).
				Require().
				WithRules(validation.Length(1, 50)),
			EmailField("email", accountMessages["email"]).Require(),
			StringField("password", accountMessages["password"]).
				Require().
				WithRules(validation.Length(6, 0)),
			URLField("photoURL", accountMessages["photoURL"]),
			StringField("username", accountMessages["username"]).
				WithRules(validation.Length(1, 30)),
			PhoneField("phoneNumber", accountMessages["phoneNumber"]),
		},
	})

	r.register(ResourceAccounts, OpFind, &Schema{
		RequireQuery: true,
		QueryMessage: accountMessages["query"],
		Query: []Field{
			EmailField("email", accountMessages["email"]),
			StringField("page", accountMessages["page_token"]),
			StringField("id_token", accountMessages["id_token"]).Require(),
			NumberField("results", accountMessages["page_results"]).
				WithRules(validation.Min(0), validation.Max(1000)).
				WithDefault(1000),
		},
	})

	r.register(ResourceAccounts, OpGet, &Schema{
		RequireQuery: true,
		QueryMessage: accountMessages["query"],
		Query:        authenticatedQuery(),
	})

	r.register(ResourceAccounts, OpPatch, &Schema{
		RequireQuery:   true,
		QueryMessage:   accountMessages["query"],
		Query:          authenticatedQuery(),
		RequirePayload: true,
		PayloadMessage: accountMessages["data"],
		Payload: []Field{
			DateField("birthday", accountMessages["birthday"]).Require(),
			BooleanField("business", accountMessages["business"]).WithDefault(false),
			BooleanField("premium", accountMessages["premium"]).WithDefault(false),
		},
	})

	r.register(ResourceAccounts, OpUpdate, &Schema{
		RequireQuery:   true,
		QueryMessage:   accountMessages["query"],
		Query:          authenticatedQuery(),
		RequirePayload: true,
		PayloadMessage: accountMessages["data"],
		Payload: []Field{
			StringField("displayName", accountMessages["displayName"]).
				WithRules(validation.Length(1, 50)),
			EmailField("email", accountMessages["email"]),
			StringField("password", accountMessages["password"]).
				WithRules(validation.Length(6, 0)),
			URLField("photoURL", accountMessages["photoURL"]),
			PhoneField("phoneNumber", accountMessages["phoneNumber"]),
		},
	})

	r.register(ResourceAccounts, OpRemove, &Schema{
		RequireQuery: true,
		QueryMessage: accountMessages["query"],
		Query:        authenticatedQuery(),
	})
}
