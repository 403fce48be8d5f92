// Package jwt signs and verifies HS256 JSON Web Tokens.
//
// Service accepts any JSON-serializable claims structure;
// StandardClaims covers the RFC 7519 registered fields. Claims types
// that implement Valid() error get temporal validation on parse.
//
//	svc, err := jwt.NewFromString(signingKey)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	token, err := svc.Generate(jwt.StandardClaims{
//	    Subject:   userID.String(),
//	    ExpiresAt: time.Now().Add(time.Hour).Unix(),
//	})
//
//	var claims jwt.StandardClaims
//	err = svc.Parse(token, &claims)
//
// Token extraction from HTTP requests and tenant binding live in the
// accesstoken package.
package jwt
