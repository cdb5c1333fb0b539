// Package notify sends email over SMTP.
package notify
