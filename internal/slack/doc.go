// Package slack delivers email notifications to a Slack incoming webhook
// using Block Kit formatting. Priorities map to channels so urgent mail
// surfaces where the team watches.
package slack
