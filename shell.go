package main

import (
	"fmt"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/Eshwarpawanpeddi/Jetbot-os/drive"
	"github.com/Eshwarpawanpeddi/Jetbot-os/onboard"
)

// buildShell wires the local development shell.
func buildShell(robot onboard.Robot) *ishell.Shell {
	shell := ishell.New()
	shell.Println("Robot development shell")
	shell.ShowPrompt(true)

	shell.AddCmd(&ishell.Cmd{
		Name: "createsuperuser",
		Help: "createsuperuser <email> <password>",
		Func: func(c *ishell.Context) {
			// disable the '>>>' for cleaner same line input.
			c.ShowPrompt(false)
			defer c.ShowPrompt(true) // yes, revert when done.

			var email string
			if len(c.Args) >= 1 {
				email = c.Args[0]
			} else {
				c.Print("Email: ")
				email = c.ReadLine()
			}

			var password string
			if len(c.Args) >= 2 {
				password = c.Args[1]
			} else {
				c.Print("Password: ")
				password = c.ReadPassword()
			}

			user := &User{
				Email: email,
				Name:  email,
				Admin: true,
			}
			user.SetPassword([]byte(password))
			if err := ENV.DB.Save(user); err != nil {
				panic(err)
			}

			c.Println("Superuser created")
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name:      "drive",
		Completer: func([]string) []string { return drive.DirectionTokens() },
		Help:      "drive <direction> [speed]",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(errIncorrectArgs("drive <direction> [speed]"))
				return
			}

			var speed *int
			if len(c.Args) >= 2 {
				v, err := strconv.Atoi(c.Args[1])
				if err != nil {
					c.Err(err)
					return
				}
				speed = &v
			}

			state, err := robot.Drive(c.Args[0], speed)
			if err != nil {
				c.Err(err)
				return
			}
			c.Printf("Driving %s L:%d R:%d\n", state.Direction, state.Left, state.Right)
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "stop",
		Help: "halt the motors immediately",
		Func: func(c *ishell.Context) {
			robot.Stop()
			c.Println("Motors stopped")
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name:      "mode",
		Completer: func([]string) []string { return []string{"manual", "automatic"} },
		Help:      "mode <manual|automatic>",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(errIncorrectArgs("mode <manual|automatic>"))
				return
			}
			if err := robot.SetMode(c.Args[0]); err != nil {
				c.Err(err)
				return
			}
			c.Printf("Mode set to %s\n", robot.Mode())
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "status",
		Help: "print the current device snapshot",
		Func: func(c *ishell.Context) {
			s := robot.Status()
			c.Printf("mode=%s direction=%s L:%d R:%d running=%v battery=%d%%\n",
				s.Mode, s.Motor.Direction, s.Motor.Left, s.Motor.Right,
				s.Motor.Running, s.Battery.Level)
		},
	})

	return shell
}

func errIncorrectArgs(usage string) error {
	return fmt.Errorf("Incorrect number of arguments. Usage: %s", usage)
}
