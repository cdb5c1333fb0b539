// Package quota derives a merchant's order-usage state from the order count,
// the plan limit and the paid flag.
//
// Evaluation is advisory. The dashboard uses it to show the usage banner and
// to decide when to steer a free merchant to the upgrade page; nothing in this
// service refuses a request because a quota was reached.
package quota
