package template

import "fmt"

func PaymentLinkTemplate(name, qrImageURL, deepLink string) string {
	template := fmt.Sprintf(`
		<html>
        <body>
            <h2>Welcome aboard</h2>
            <p>Dear %s,</p>
            <p>Your registration is almost done. Scan the QR code below to pay the one-time registration fee and activate your account.</p>
            <img src="%s" alt="Payment QR code" width="240" />
            <p>You can also complete the payment from your browser: <a href="%s">%s</a></p>
            <p>The QR code is single use and expires automatically.</p>
            <br>
            <p>Regards,<br>The Onboarding Team</p>
        </body>
        </html>
		`, name, qrImageURL, deepLink, deepLink)
	return template
}

func OTPTemplate(code string) string {
	template := fmt.Sprintf(`
		<html>
        <body>
            <h2>Login code</h2>
            <p>Your one-time login code is <b>%s</b>. It is valid for 5 minutes.</p>
            <p>Never share this code with anyone.</p>
        </body>
        </html>
		`, code)
	return template
}
