/*
Package jwtauthorizer authenticates HTTP requests with RS256 session tokens
signed by an identity provider that publishes its keys as a JWKS.

The module is layered:

  - jwks: fetches the identity provider's key set and caches it, with an
    expiry and a refresh policy for unknown key ids
  - jwks/redisstore: shares fetched key sets between instances through Redis
  - validator: verifies a token against the cached keys and decodes its
    session claims
  - core: reads the token from a request (Authorization header, optionally
    the session cookie) and classifies the result
  - this package: net/http middleware with logging, metrics and tracing
  - framework/gin, framework/echo, integrations/grpc: the same for other
    transports

# Basic Usage

	issuerURL, _ := url.Parse("https://clerk.example.com/")

	provider, err := jwks.NewCachingProvider(
	    jwks.WithIssuerURL(issuerURL),
	    jwks.WithExpireAfter(time.Hour),
	    jwks.WithUnknownKeyPolicy(jwks.RatelimitedRefresh(5*time.Minute)),
	)
	if err != nil {
	    log.Fatal(err)
	}

	v, err := validator.New(validator.WithKeyGetter(provider))
	if err != nil {
	    log.Fatal(err)
	}

	authorizer, err := core.New(
	    core.WithValidator(v),
	    core.WithSessionCookie(true),
	)
	if err != nil {
	    log.Fatal(err)
	}

	middleware, err := jwtauthorizer.New(jwtauthorizer.WithAuthorizer(authorizer))
	if err != nil {
	    log.Fatal(err)
	}

	http.Handle("/api/", middleware.Handler(apiHandler))

Inside the handler:

	claims := jwtauthorizer.MustGetClaims(r.Context())
	fmt.Println(claims.Subject)

# Responses

DefaultErrorHandler answers requests without a credential and requests with
a rejected token with 401, and failures of the identity provider (key set
unavailable, unusable key) with 500. Only the client-safe reason ("no
credential found", "invalid token", "key service unavailable", ...) is
written to the response.

# Observability

	registry := prometheus.NewRegistry()
	metrics := jwtauthorizer.NewPrometheusMetrics(registry)

	middleware, err := jwtauthorizer.New(
	    jwtauthorizer.WithAuthorizer(authorizer),
	    jwtauthorizer.WithLogger(jwtauthorizer.NewZapLogger(zapLogger)),
	    jwtauthorizer.WithMetrics(metrics),
	    jwtauthorizer.WithTracer(jwtauthorizer.NewOpenTelemetryTracer(otel.Tracer("api"))),
	)

The same Metrics value can be passed to jwks.WithMetrics to record key set
fetches.
*/
package jwtauthorizer
