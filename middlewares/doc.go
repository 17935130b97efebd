// Package middlewares provides net/http middleware for mvc applications.
//
// Middleware registered with mvc.WithMiddleware wraps every request, the
// ones dispatched through the request lifecycle as well as mounts and
// static files.
//
// # Request ID
//
// RequestID assigns a unique ID to each request. It reuses an incoming
// X-Request-ID (or X-Correlation-ID) header and generates a UUID otherwise.
// Use RequestIDExtractor with WithLogger to add request_id to every log entry:
//
//	app := mvc.New(
//	    mvc.WithLogger("shop", middlewares.RequestIDExtractor()),
//	    mvc.WithMiddleware(
//	        middlewares.RequestID(),
//	    ),
//	)
//
// # Recover
//
// Recover catches panics in handlers outside the lifecycle, which recovers
// its own, logs them as critical and answers with a plain-text 500.
//
//	mvc.WithMiddleware(
//	    middlewares.Recover(middlewares.WithRecoverLogger(log)),
//	)
//
// # Timeout
//
// Timeout puts a deadline on the request context. Controllers pass the
// lifecycle Context to blocking calls to honor it.
//
//	mvc.WithMiddleware(
//	    middlewares.Timeout(5*time.Second),
//	)
//
// # CORS
//
// CORS answers preflight requests and adds Access-Control headers:
//
//	mvc.WithMiddleware(
//	    middlewares.CORS(
//	        middlewares.WithAllowOrigins("https://app.example.com"),
//	        middlewares.WithAllowCredentials(),
//	    ),
//	)
package middlewares
