package email

import (
	"fmt"
)

func (s *Service) generateResetText(toEmail, code string) string {
	return fmt.Sprintf(`Hello,

A password reset was requested for the Wardrobe App account registered to %s.

Visit %s and enter the code below along with your new password:

    %s

The code expires in 24 hours. If you did not request a reset, you can ignore
this email and your password will stay unchanged.

- The Wardrobe App team
`, toEmail, s.resetLinkBase, code)
}

func (s *Service) generateResetHTML(toEmail, code string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Reset your Wardrobe App password</title>
</head>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #2d3e5e;">Wardrobe App</h2>
    <p>A password reset was requested for the account registered to <strong>%s</strong>.</p>
    <p><a href="%s" style="color: #2d3e5e;">Open the reset page</a> and enter this code along with your new password:</p>
    <p style="font-size: 20px; font-family: monospace; background: #f4f4f4; padding: 12px; border-radius: 6px;">%s</p>
    <p>The code expires in 24 hours. If you did not request a reset, you can ignore this email.</p>
    <p style="color: #6c757d; font-size: 13px;">- The Wardrobe App team</p>
</body>
</html>`, toEmail, s.resetLinkBase, code)
}
