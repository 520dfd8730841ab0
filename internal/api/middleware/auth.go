package middleware

// TokenHeader is the header snapshot-mode clients present their access
// token in, per spec's HTTP surface (§6: "header token: <value>").
const TokenHeader = "token"
