package auth

import (
	"fmt"
	"io"
	"strings"
)

// ShowAccessKeyGuide prints how to obtain an access key pair for login
func ShowAccessKeyGuide(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintln(w, "AWS ACCESS KEYS")
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "awsdash needs an access key pair for an IAM user that may call")
	fmt.Fprintln(w, "ec2:DescribeInstances and iam:GetUser.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  1. Open the IAM console and select your user")
	fmt.Fprintln(w, "  2. Security credentials -> Create access key")
	fmt.Fprintln(w, "  3. Copy the access key ID and the secret access key")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Keys from AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY are used when no")
	fmt.Fprintln(w, "profile is selected. Stored keys are kept in the system keyring or in")
	fmt.Fprintln(w, "an encrypted file.")
	fmt.Fprintln(w, strings.Repeat("=", 72))
}
