// Package models defines the car show's domain records (registrations,
// sponsors, admins, audit and email logs, ad campaigns) and the typed
// commands that mutate them.
package models
