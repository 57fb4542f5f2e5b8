package common

// StripeSignatureHeader carries the webhook signature sent by the payment processor.
const StripeSignatureHeader = "Stripe-Signature"

// RegistrationIDMetadataKey tags checkout sessions with the registration they pay for.
const RegistrationIDMetadataKey = "registration_id"
