// Package signup registers companies and inspectors and lets a company
// invite managers and inspectors.
//
// Every operation provisions rows through the provisioning package and then
// issues an email confirmation. Accounts cannot sign in until the
// confirmation code is redeemed.
//
// Usage:
//
//	svc := signup.NewSignupService(provisioner,
//		signup.WithConfirmer(verificationService),
//		signup.WithProfileResolver(resolver),
//	)
//	res, err := svc.RegisterCompany(ctx, provisioning.CompanySignup{
//		Name:     "Acme Inspections",
//		Email:    "owner@acme.test",
//		Password: "s3cret-pass",
//	})
package signup
