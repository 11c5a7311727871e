package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/pick --output domain/pick --outpkg pickmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/profile --output domain/profile --outpkg profilemock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/outcome --output domain/outcome --outpkg outcomemock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Source --dir ../domain/game --output domain/game --outpkg gamemock --filename source_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name IdentityProvider --dir ../domain/user --output domain/user --outpkg usermock --filename identity_provider_mock.go
