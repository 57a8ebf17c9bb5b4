// Package utils hosts the shared configuration and logging plumbing used by the
// pinfetch commands: a Viper-backed ConfigurationLoader and a zap LoggerFactory.
package utils
