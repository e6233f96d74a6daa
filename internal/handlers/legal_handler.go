package handlers

import (
	"github.com/gofiber/fiber/v2"
)

type LegalHandler struct{}

func NewLegalHandler() *LegalHandler {
	return &LegalHandler{}
}

func (h *LegalHandler) PrivacyPolicy(c *fiber.Ctx) error {
	return c.Type("html").SendString(`<!DOCTYPE html>
<html><head><title>Privacy Policy - TelBin</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
<style>body{font-family:-apple-system,BlinkMacSystemFont,sans-serif;max-width:800px;margin:0 auto;padding:20px;color:#333}h1{color:#1a1a1a}h2{color:#444;margin-top:30px}</style>
</head><body>
<h1>Privacy Policy</h1>
<p>Last updated: August 2026</p>
<h2>Information We Collect</h2>
<p>We collect your email address, the photos you submit for trash classification, the location labels you enter, and your recycling activity. If you sign in with Google, we receive your Google account identifier.</p>
<h2>How We Use Your Information</h2>
<p>Your data is used solely to operate TelBin: classify your scans, track your points and medals, and show community activity. Submitted photos are sent to our image-recognition provider for classification only.</p>
<h2>Data Storage</h2>
<p>Your data is stored securely on encrypted servers. We do not sell your personal information to third parties.</p>
<h2>Account Deletion</h2>
<p>You can delete your account and all associated data at any time from the app settings.</p>
<h2>Contact</h2>
<p>For questions about this policy, contact us at support@telbin.app</p>
</body></html>`)
}

func (h *LegalHandler) TermsOfService(c *fiber.Ctx) error {
	return c.Type("html").SendString(`<!DOCTYPE html>
<html><head><title>Terms of Service - TelBin</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
<style>body{font-family:-apple-system,BlinkMacSystemFont,sans-serif;max-width:800px;margin:0 auto;padding:20px;color:#333}h1{color:#1a1a1a}h2{color:#444;margin-top:30px}</style>
</head><body>
<h1>Terms of Service</h1>
<p>Last updated: August 2026</p>
<h2>Acceptance</h2>
<p>By using TelBin, you agree to these terms.</p>
<h2>User Conduct</h2>
<p>You agree to submit only genuine photos of waste you have collected and sorted. Do not post offensive, illegal, or harmful content. We reserve the right to moderate and remove content that violates our guidelines.</p>
<h2>Points and Rewards</h2>
<p>Points, medals and rewards have no monetary value and may be adjusted if abuse is detected.</p>
<h2>Termination</h2>
<p>We may suspend or terminate accounts that violate these terms.</p>
<h2>Contact</h2>
<p>For questions, contact us at support@telbin.app</p>
</body></html>`)
}
