// Package reviewer builds and mails the digest of subscription requests
// still waiting for a reviewer to check the payment proof.
package reviewer
