// Package cloud holds the AWS side of the dashboard: a fixed region to
// service client table, the EC2 instance inventory and the IAM account
// check. Every remote call is made through a retry.Invoker.
package cloud
