package nss

// MaxGroupListAttempts exposes the bound on group list calls for tests.
const MaxGroupListAttempts = maxGroupListAttempts
