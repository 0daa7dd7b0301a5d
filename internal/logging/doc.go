// Package logging builds the zap logger used across graphd and carries
// request correlation fields (request id, org scope, trace ids) through
// context.Context.
//
// Services receive a *zap.Logger at construction time and enrich individual
// entries with ContextFields:
//
//	logger.Warn("similarity lookup failed",
//	    append(logging.ContextFields(ctx), zap.Error(err))...)
package logging
