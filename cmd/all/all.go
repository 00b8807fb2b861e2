package all

import (
	_ "github.com/sagan/erolauncher/cmd/add"
	_ "github.com/sagan/erolauncher/cmd/batch"
	_ "github.com/sagan/erolauncher/cmd/export"
	_ "github.com/sagan/erolauncher/cmd/fetch"
	_ "github.com/sagan/erolauncher/cmd/launch"
	_ "github.com/sagan/erolauncher/cmd/list"
	_ "github.com/sagan/erolauncher/cmd/normalize"
	_ "github.com/sagan/erolauncher/cmd/reindex"
	_ "github.com/sagan/erolauncher/cmd/remove"
	_ "github.com/sagan/erolauncher/cmd/scan"
	_ "github.com/sagan/erolauncher/cmd/search"
	_ "github.com/sagan/erolauncher/cmd/serve"
	_ "github.com/sagan/erolauncher/cmd/testzip"
	_ "github.com/sagan/erolauncher/cmd/versioncmd"
	_ "github.com/sagan/erolauncher/cmd/vpn"
	_ "github.com/sagan/erolauncher/cmd/vpn/connect"
	_ "github.com/sagan/erolauncher/cmd/vpn/disconnect"
	_ "github.com/sagan/erolauncher/cmd/vpn/status"
	_ "github.com/sagan/erolauncher/cmd/vpn/test"
)
